package auth

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

type firestoreUsers struct {
	db *firestore.Client
}

// NewFirestoreUserStore reads users from the "users" collection.
func NewFirestoreUserStore(db *firestore.Client) UserStore {
	return &firestoreUsers{db: db}
}

func (s *firestoreUsers) FindByUsername(ctx context.Context, username string) (*User, error) {
	query := s.db.Collection("users").Where("username", "==", username).Limit(1).Documents(ctx)
	defer query.Stop()

	doc, err := query.Next()
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao consultar usuários: %w", err)
	}

	var user User
	if err := doc.DataTo(&user); err != nil {
		return nil, fmt.Errorf("erro ao ler dados do usuário: %w", err)
	}
	return &user, nil
}
