package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Mazen-Mokhtar/logen-store-sub001/internal/entities"

	"github.com/google/uuid"
)

// resolveUser turns the checkout identity into the canonical user id the
// order will belong to. Runs inside the checkout transaction, so a guest
// record created here rolls back together with the order on any failure.
func (s *checkoutService) resolveUser(ctx context.Context, in entities.CheckoutInput) (string, error) {
	if in.AuthUserID != "" {
		return in.AuthUserID, nil
	}
	if in.Guest == nil {
		return "", entities.ErrGuestInfoMissing
	}
	g := in.Guest

	existing, err := s.users.GetGuestByEmail(ctx, g.Email)
	if err == nil {
		// Guest identity is mutable contact info; repeat checkouts
		// overwrite name and phone in place.
		if err := s.users.UpdateGuestContact(ctx, existing.ID, g.FirstName, g.LastName, g.Phone); err != nil {
			return "", fmt.Errorf("failed to update guest contact: %w", err)
		}
		return existing.ID, nil
	}
	if !errors.Is(err, entities.ErrUserNotFound) {
		return "", fmt.Errorf("failed to look up guest: %w", err)
	}

	// Guests must not silently merge into registered accounts.
	if _, err := s.users.GetRegisteredByEmail(ctx, g.Email); err == nil {
		return "", entities.ErrEmailTaken
	} else if !errors.Is(err, entities.ErrUserNotFound) {
		return "", fmt.Errorf("failed to look up registered user: %w", err)
	}

	now := time.Now()
	user := entities.User{
		ID:        uuid.NewString(),
		Email:     g.Email,
		FirstName: g.FirstName,
		LastName:  g.LastName,
		Phone:     g.Phone,
		Provider:  entities.ProviderGuest,
		// Guests do not go through email verification.
		Confirmed: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return "", fmt.Errorf("failed to create guest user: %w", err)
	}
	return user.ID, nil
}
