package dto

type ActivateInput struct {
	StrictMode bool
	Additional []string
}

type StatusOutput struct {
	Active     bool
	Degraded   bool
	StrictMode bool
	Allowed    []string
	Redirects  int
}

type DecisionOutput struct {
	Package string
	Action  string
}
