// Package registry holds the static table of flow descriptors. Callers
// iterate it in order and pick the first flow whose eligibility checks pass;
// the iteration itself lives with the hosting button component.
package registry

import (
	"context"

	"github.com/Eduardo-Anosa-Evardonie-jr/paypal-smart-payment-buttons/internal/flow"
	"github.com/Eduardo-Anosa-Evardonie-jr/paypal-smart-payment-buttons/internal/native"
	"github.com/Eduardo-Anosa-Evardonie-jr/paypal-smart-payment-buttons/internal/walletcapture"
	"github.com/Eduardo-Anosa-Evardonie-jr/paypal-smart-payment-buttons/pkg/enums"
	pkgerrors "github.com/Eduardo-Anosa-Evardonie-jr/paypal-smart-payment-buttons/pkg/errors"
)

// Registry is an ordered set of flow descriptors. Order matters: earlier
// flows win when more than one is eligible.
type Registry struct {
	flows []flow.Flow
}

// New builds the production registry: wallet capture first, then native.
// Web checkout is not listed because it is the universal fallback, not a
// selectable strategy.
func New(session *native.SessionContext) (*Registry, error) {
	nativeFlow, err := native.New(session)
	if err != nil {
		return nil, err
	}
	return FromFlows(walletcapture.New(), nativeFlow)
}

// FromFlows builds a registry over an explicit descriptor list, in order.
func FromFlows(flows ...flow.Flow) (*Registry, error) {
	if len(flows) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one flow required")
	}
	seen := map[enums.Flow]bool{}
	for _, f := range flows {
		if f == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "nil flow descriptor")
		}
		if seen[f.Name()] {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "duplicate flow descriptor").
				WithDetails(map[string]string{"flow": f.Name().String()})
		}
		seen[f.Name()] = true
	}
	return &Registry{flows: append([]flow.Flow(nil), flows...)}, nil
}

// Flows returns the descriptors in selection order.
func (r *Registry) Flows() []flow.Flow {
	return append([]flow.Flow(nil), r.flows...)
}

// ByName looks a descriptor up by flow name.
func (r *Registry) ByName(name enums.Flow) (flow.Flow, error) {
	for _, f := range r.flows {
		if f.Name() == name {
			return f, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown flow").
		WithDetails(map[string]string{"flow": name.String()})
}

// Setup runs every descriptor's setup. Descriptor setups are idempotent,
// so this is too.
func (r *Registry) Setup(ctx context.Context, fctx *flow.Context) error {
	for _, f := range r.flows {
		if err := f.Setup(ctx, fctx); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "setup flow "+f.Name().String())
		}
	}
	return nil
}
