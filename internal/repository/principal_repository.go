package repository

import (
	"context"

	"cloud.google.com/go/firestore"

	"github.com/yantrahq/yantra/internal/models"
)

const principalsCollection = "users"

// principalRepository implements PrincipalRepository on Firestore
type principalRepository struct {
	client *firestore.Client
}

// NewPrincipalRepository creates a new PrincipalRepository instance
func NewPrincipalRepository(client *firestore.Client) PrincipalRepository {
	return &principalRepository{
		client: client,
	}
}

func (r *principalRepository) Get(ctx context.Context, id string) (*models.Principal, error) {
	snap, err := r.client.Collection(principalsCollection).Doc(id).Get(ctx)
	if err != nil {
		return nil, classify("get principal", err)
	}
	var p models.Principal
	if err := snap.DataTo(&p); err != nil {
		return nil, classify("decode principal", err)
	}
	p.ID = snap.Ref.ID
	return &p, nil
}

func (r *principalRepository) Create(ctx context.Context, principal *models.Principal) error {
	_, err := r.client.Collection(principalsCollection).Doc(principal.ID).Create(ctx, principal)
	return classify("create principal", err)
}
