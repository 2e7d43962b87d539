package service

import (
	"context"
	"errors"
	"testing"

	"github.com/yourorg/swiftstore/internal/domain"
)

func TestCreateStoreDuplicateSubdomain(t *testing.T) {
	stores := newMemStoreRepo()
	s := NewStoreService(stores, newMemProductRepo(), nil, nil)
	ctx := context.Background()

	if _, err := s.CreateStore(ctx, "u1", CreateStoreInput{Name: "Acme", Subdomain: "acme"}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := s.CreateStore(ctx, "u2", CreateStoreInput{Name: "Other Acme", Subdomain: "acme"})
	if !errors.Is(err, domain.ErrDuplicateSubdomain) {
		t.Fatalf("err = %v, want duplicate subdomain", err)
	}
}

func TestCreateStoreRejectsBadSubdomains(t *testing.T) {
	s := NewStoreService(newMemStoreRepo(), newMemProductRepo(), nil, nil)
	ctx := context.Background()

	cases := []string{"", "Has Space", "UPPER!", "-leading", "trailing-", "www"}
	for _, sub := range cases {
		_, err := s.CreateStore(ctx, "u1", CreateStoreInput{Name: "X", Subdomain: sub})
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("subdomain %q: err = %v, want validation error", sub, err)
		}
	}

	// Mixed case is normalized, not rejected.
	store, err := s.CreateStore(ctx, "u1", CreateStoreInput{Name: "X", Subdomain: " Acme "})
	if err != nil {
		t.Fatalf("normalized subdomain rejected: %v", err)
	}
	if store.Subdomain != "acme" {
		t.Errorf("subdomain = %q, want acme", store.Subdomain)
	}
}

func TestVerifyStoreOwnershipNeverErrors(t *testing.T) {
	stores := newMemStoreRepo()
	s := NewStoreService(stores, newMemProductRepo(), nil, nil)
	ctx := context.Background()

	store, err := s.CreateStore(ctx, "owner", CreateStoreInput{Name: "Acme", Subdomain: "acme"})
	if err != nil {
		t.Fatal(err)
	}

	if !s.VerifyStoreOwnership(ctx, store.ID, "owner") {
		t.Error("owner must verify")
	}
	if s.VerifyStoreOwnership(ctx, store.ID, "intruder") {
		t.Error("non-owner must not verify")
	}
	if s.VerifyStoreOwnership(ctx, "missing-store", "owner") {
		t.Error("missing store must not verify")
	}
	if s.VerifyStoreOwnership(ctx, "", "") {
		t.Error("empty identities must not verify")
	}
}

func TestStorefrontShowsPublishedOnly(t *testing.T) {
	stores := newMemStoreRepo()
	products := newMemProductRepo()
	s := NewStoreService(stores, products, nil, nil)
	ctx := context.Background()

	store, err := s.CreateStore(ctx, "owner", CreateStoreInput{Name: "Acme", Subdomain: "acme"})
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range []*domain.Product{
		{StoreID: store.ID, Name: "Visible", Published: true},
		{StoreID: store.ID, Name: "Draft", Published: false},
	} {
		if err := products.Create(ctx, p); err != nil {
			t.Fatal(err)
		}
	}

	view, err := s.Storefront(ctx, "acme")
	if err != nil {
		t.Fatalf("storefront: %v", err)
	}
	if view.Subdomain != "acme" || view.ID != store.ID {
		t.Errorf("view identity = %+v", view)
	}
	if len(view.Products) != 1 || view.Products[0].Name != "Visible" {
		t.Errorf("storefront must list published products only, got %d", len(view.Products))
	}

	if _, err := s.Storefront(ctx, "ghost"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown subdomain: err = %v, want not found", err)
	}
}
