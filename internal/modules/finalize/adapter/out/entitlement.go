package out

import "context"

// ConfigEntitlement reports the premium flag from configuration.
type ConfigEntitlement struct {
	Premium bool
}

func (e ConfigEntitlement) IsPremium(context.Context) (bool, error) {
	return e.Premium, nil
}
