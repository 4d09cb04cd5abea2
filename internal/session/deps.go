package session

//go:generate mockgen -source=deps.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"scheme-eligibility/internal/explanation"
	"scheme-eligibility/internal/models"
)

// SchemeSource resolves scheme ids. Implemented by *catalog.Catalog.
type SchemeSource interface {
	MustGet(id string) (*models.Scheme, error)
}

// Explainer is the explanation collaborator. Implemented by
// *explanation.Service and *explanation.CachedExplainer.
type Explainer interface {
	Explain(ctx context.Context, req explanation.Request) (*explanation.Payload, error)
}
