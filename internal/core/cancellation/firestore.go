package cancellation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

const collection = "cancelamentos"

// entry is the document stored for every mark.
type entry struct {
	Organization string    `firestore:"cnpj"`
	Key          string    `firestore:"chave"`
	CreatedAt    time.Time `firestore:"criadoEm"`
}

type firestoreRepository struct {
	db *firestore.Client
}

// NewFirestoreRepository stores marks in the "cancelamentos" collection.
func NewFirestoreRepository(db *firestore.Client) Repository {
	return &firestoreRepository{db: db}
}

func (r *firestoreRepository) Load(ctx context.Context, organization string) ([]string, error) {
	iter := r.db.Collection(collection).Where("cnpj", "==", organization).Documents(ctx)
	defer iter.Stop()

	var keys []string
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("erro ao consultar cancelamentos: %w", err)
		}
		var e entry
		if err := doc.DataTo(&e); err != nil {
			return nil, fmt.Errorf("erro ao ler cancelamento %s: %w", doc.Ref.ID, err)
		}
		keys = append(keys, e.Key)
	}
	return keys, nil
}

func (r *firestoreRepository) Save(ctx context.Context, organization, key string) error {
	_, err := r.db.Collection(collection).Doc(docID(organization, key)).Set(ctx, entry{
		Organization: organization,
		Key:          key,
		CreatedAt:    time.Now(),
	})
	if err != nil {
		return fmt.Errorf("erro ao gravar cancelamento: %w", err)
	}
	return nil
}

func (r *firestoreRepository) Delete(ctx context.Context, organization, key string) error {
	if _, err := r.db.Collection(collection).Doc(docID(organization, key)).Delete(ctx); err != nil {
		return fmt.Errorf("erro ao remover cancelamento: %w", err)
	}
	return nil
}

// docID builds a deterministic document id; Firestore ids cannot contain "/".
func docID(organization, key string) string {
	var digits strings.Builder
	for _, r := range organization {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	return digits.String() + "_" + strings.ReplaceAll(key, "/", "_")
}
