package handlers

import (
	"testing"

	"github.com/buzztalks/backend/internal/models"
	"gorm.io/gorm"
)

type fakeAccountRepo struct {
	accounts []*models.Account
}

func (r *fakeAccountRepo) CreateAccount(account *models.Account) error {
	r.accounts = append(r.accounts, account)
	return nil
}

func (r *fakeAccountRepo) GetAccountByEmail(email string) (*models.Account, error) {
	for _, a := range r.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeAccountRepo) GetAccountByFirebaseUID(firebaseUID string) (*models.Account, error) {
	for _, a := range r.accounts {
		if a.FirebaseUID == firebaseUID {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func TestLinkFirebaseAccountCreatesOnce(t *testing.T) {
	accountRepo := &fakeAccountRepo{}
	h := NewAuthHandler(accountRepo, nil, nil, "secret")

	h.linkFirebaseAccount("fb-uid-1", "user@example.com")
	// A second login must reuse the existing row.
	h.linkFirebaseAccount("fb-uid-1", "user@example.com")

	if len(accountRepo.accounts) != 1 {
		t.Fatalf("accounts = %d, want 1", len(accountRepo.accounts))
	}
	a := accountRepo.accounts[0]
	if a.FirebaseUID != "fb-uid-1" || a.ProfileID != "fb-uid-1" || a.Email != "user@example.com" {
		t.Errorf("linked account = %+v", a)
	}
	if a.Password != "" {
		t.Errorf("firebase-linked account must carry no password hash")
	}
}
