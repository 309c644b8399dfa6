package repository

import (
	"context"
	"errors"
	"fmt"

	"trialfinder-backend/internal/pharmacy/domain"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const pharmaciesCollection = "pharmacies"

// PharmacyRepository defines the document store for pharmacy registrations
type PharmacyRepository interface {
	// Create registers p under its normalized name. It fails with
	// ErrPharmacyNameTaken or ErrPharmacyAlreadyExists without writing.
	Create(ctx context.Context, p *domain.Pharmacy) error
	// GetByOwner returns nil when the user has not registered a pharmacy
	GetByOwner(ctx context.Context, ownerUserID string) (*domain.Pharmacy, error)
	// GetByNormalizedName returns nil when no pharmacy uses the name
	GetByNormalizedName(ctx context.Context, normalizedName string) (*domain.Pharmacy, error)
}

type firestoreRepository struct {
	client *firestore.Client
}

func NewFirestoreRepository(client *firestore.Client) PharmacyRepository {
	return &firestoreRepository{client: client}
}

// Create runs the owner check and the keyed create in one transaction. The
// document id is the normalized name, so two concurrent registrations of the
// same name cannot both commit.
func (r *firestoreRepository) Create(ctx context.Context, p *domain.Pharmacy) error {
	col := r.client.Collection(pharmaciesCollection)
	doc := col.Doc(p.NormalizedName)
	p.ID = doc.ID

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		owned, err := tx.Documents(col.Where("ownerUserId", "==", p.OwnerUserID).Limit(1)).GetAll()
		if err != nil {
			return err
		}
		if len(owned) > 0 {
			return domain.ErrPharmacyAlreadyExists
		}
		return tx.Create(doc, p)
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrPharmacyAlreadyExists):
		return err
	case status.Code(err) == codes.AlreadyExists:
		return domain.ErrPharmacyNameTaken
	default:
		return fmt.Errorf("failed to create pharmacy: %w", err)
	}
}

func (r *firestoreRepository) GetByOwner(ctx context.Context, ownerUserID string) (*domain.Pharmacy, error) {
	snaps, err := r.client.Collection(pharmaciesCollection).
		Where("ownerUserId", "==", ownerUserID).
		Limit(1).
		Documents(ctx).
		GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to query pharmacy: %w", err)
	}
	if len(snaps) == 0 {
		return nil, nil
	}
	return decode(snaps[0])
}

func (r *firestoreRepository) GetByNormalizedName(ctx context.Context, normalizedName string) (*domain.Pharmacy, error) {
	snap, err := r.client.Collection(pharmaciesCollection).Doc(normalizedName).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get pharmacy: %w", err)
	}
	return decode(snap)
}

func decode(snap *firestore.DocumentSnapshot) (*domain.Pharmacy, error) {
	var p domain.Pharmacy
	if err := snap.DataTo(&p); err != nil {
		return nil, fmt.Errorf("failed to decode pharmacy: %w", err)
	}
	return &p, nil
}
