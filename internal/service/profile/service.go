// internal/service/profile/service.go
package profile

import (
	"context"

	"tishe-service/internal/session"
	"tishe-service/internal/store"

	xerrors "tishe-service/internal/pkg/errors"

	"go.uber.org/zap"
)

// CartItem is one cart line on the user's profile document.
type CartItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Service keeps per-user cart and wishlist state on the user document of
// whoever the session has resolved to. Every operation requires an
// authenticated session.
type Service struct {
	docs     store.DocumentStore
	sessions *session.Manager
	logger   *zap.Logger
}

func NewService(docs store.DocumentStore, sessions *session.Manager, logger *zap.Logger) *Service {
	return &Service{docs: docs, sessions: sessions, logger: logger}
}

// Cart returns the current user's cart.
func (s *Service) Cart(ctx context.Context) ([]CartItem, error) {
	doc, _, err := s.currentUserDoc(ctx)
	if err != nil {
		return nil, err
	}
	return decodeCart(doc), nil
}

// AddToCart adds quantity of a product, merging with an existing line.
func (s *Service) AddToCart(ctx context.Context, productID string, quantity int) error {
	if productID == "" || quantity <= 0 {
		return xerrors.ErrInvalidInput
	}
	doc, uid, err := s.currentUserDoc(ctx)
	if err != nil {
		return err
	}

	cart := decodeCart(doc)
	merged := false
	for i, item := range cart {
		if item.ProductID == productID {
			cart[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		cart = append(cart, CartItem{ProductID: productID, Quantity: quantity})
	}

	doc["cart"] = encodeCart(cart)
	return s.saveUserDoc(ctx, uid, doc)
}

// RemoveFromCart drops a product line entirely.
func (s *Service) RemoveFromCart(ctx context.Context, productID string) error {
	doc, uid, err := s.currentUserDoc(ctx)
	if err != nil {
		return err
	}

	cart := decodeCart(doc)
	kept := cart[:0]
	for _, item := range cart {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}

	doc["cart"] = encodeCart(kept)
	return s.saveUserDoc(ctx, uid, doc)
}

// Wishlist returns the current user's wishlist.
func (s *Service) Wishlist(ctx context.Context) ([]string, error) {
	doc, _, err := s.currentUserDoc(ctx)
	if err != nil {
		return nil, err
	}
	return decodeWishlist(doc), nil
}

// AddToWishlist adds a product id once.
func (s *Service) AddToWishlist(ctx context.Context, productID string) error {
	if productID == "" {
		return xerrors.ErrInvalidInput
	}
	doc, uid, err := s.currentUserDoc(ctx)
	if err != nil {
		return err
	}

	wishlist := decodeWishlist(doc)
	for _, id := range wishlist {
		if id == productID {
			return nil
		}
	}
	wishlist = append(wishlist, productID)

	doc["wishlist"] = encodeWishlist(wishlist)
	return s.saveUserDoc(ctx, uid, doc)
}

// RemoveFromWishlist drops a product id.
func (s *Service) RemoveFromWishlist(ctx context.Context, productID string) error {
	doc, uid, err := s.currentUserDoc(ctx)
	if err != nil {
		return err
	}

	wishlist := decodeWishlist(doc)
	kept := wishlist[:0]
	for _, id := range wishlist {
		if id != productID {
			kept = append(kept, id)
		}
	}

	doc["wishlist"] = encodeWishlist(kept)
	return s.saveUserDoc(ctx, uid, doc)
}

// currentUserDoc reads the signed-in user's document, or a fresh one when
// the profile has not been written yet.
func (s *Service) currentUserDoc(ctx context.Context) (store.Document, string, error) {
	snap := s.sessions.Snapshot()
	if !snap.Authenticated() {
		return nil, "", xerrors.ErrUnauthorized
	}
	uid := snap.Identity.ID

	doc, err := s.docs.GetDocument(ctx, store.CollectionUsers, uid)
	if xerrors.Is(err, xerrors.ErrNotFound) {
		doc = store.Document{"uid": uid, "email": snap.Identity.Email}
		err = nil
	}
	if err != nil {
		return nil, "", xerrors.Wrap(err, "failed to read user document")
	}
	return doc, uid, nil
}

func (s *Service) saveUserDoc(ctx context.Context, uid string, doc store.Document) error {
	if err := s.docs.SetDocument(ctx, store.CollectionUsers, uid, doc); err != nil {
		return xerrors.Wrap(err, "failed to write user document")
	}
	return nil
}

func decodeCart(doc store.Document) []CartItem {
	raw, _ := doc["cart"].([]any)
	cart := make([]CartItem, 0, len(raw))
	for _, v := range raw {
		entry, ok := v.(map[string]any)
		if !ok {
			continue
		}
		item := CartItem{}
		item.ProductID, _ = entry["productId"].(string)
		if q, ok := entry["quantity"].(float64); ok {
			item.Quantity = int(q)
		}
		if item.ProductID != "" {
			cart = append(cart, item)
		}
	}
	return cart
}

func encodeCart(cart []CartItem) []any {
	out := make([]any, 0, len(cart))
	for _, item := range cart {
		out = append(out, map[string]any{
			"productId": item.ProductID,
			"quantity":  float64(item.Quantity),
		})
	}
	return out
}

func decodeWishlist(doc store.Document) []string {
	raw, _ := doc["wishlist"].([]any)
	wishlist := make([]string, 0, len(raw))
	for _, v := range raw {
		if id, ok := v.(string); ok && id != "" {
			wishlist = append(wishlist, id)
		}
	}
	return wishlist
}

func encodeWishlist(wishlist []string) []any {
	out := make([]any, 0, len(wishlist))
	for _, id := range wishlist {
		out = append(out, id)
	}
	return out
}
