package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/teamcuriosity/collective/internal/core/domain"
)

const invitesCollection = "invites"

type InviteRepository struct {
	col *mongo.Collection
}

func NewInviteRepository(db *mongo.Database) *InviteRepository {
	return &InviteRepository{col: db.Collection(invitesCollection)}
}

// The token is the document key, so a token can never be issued twice.
type mongoInvite struct {
	Token     string     `bson:"_id"`
	IsValid   bool       `bson:"is_valid"`
	ExpiresAt time.Time  `bson:"expires_at"`
	CreatedBy string     `bson:"created_by"`
	UsedBy    string     `bson:"used_by,omitempty"`
	UsedAt    *time.Time `bson:"used_at,omitempty"`
	CreatedAt time.Time  `bson:"created_at"`
}

func (r *InviteRepository) Create(ctx context.Context, inv *domain.Invite) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoInvite{
		Token:     inv.Token,
		IsValid:   inv.IsValid,
		ExpiresAt: inv.ExpiresAt.UTC(),
		CreatedBy: inv.CreatedBy,
		CreatedAt: inv.CreatedAt.UTC(),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateToken
		}
		return fmt.Errorf("insert invite: %w", err)
	}
	return nil
}

func (r *InviteRepository) FindByToken(ctx context.Context, token string) (*domain.Invite, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mi mongoInvite
	if err := r.col.FindOne(ctx, bson.M{"_id": token}).Decode(&mi); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTokenNotFound
		}
		return nil, fmt.Errorf("find invite: %w", err)
	}
	return mi.toDomain(), nil
}

// List returns every invite, newest first.
func (r *InviteRepository) List(ctx context.Context) ([]*domain.Invite, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find invites: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoInvite
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode invites: %w", err)
	}

	out := make([]*domain.Invite, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

// Consume is a single FindOneAndUpdate whose filter carries every
// redemption condition. The server applies it atomically per document, so
// only one caller can observe is_valid=true and flip it.
func (r *InviteRepository) Consume(ctx context.Context, token string, now time.Time) (*domain.Invite, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now = now.UTC()
	filter := bson.M{
		"_id":        token,
		"is_valid":   true,
		"expires_at": bson.M{"$gt": now},
	}
	update := bson.M{"$set": bson.M{"is_valid": false, "used_at": now}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var mi mongoInvite
	err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&mi)
	if err == nil {
		return mi.toDomain(), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("consume invite: %w", err)
	}

	inv, err := r.FindByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if rerr := inv.RedeemError(now); rerr != nil {
		return nil, rerr
	}
	// Valid now but the update missed: another caller won between the two reads.
	return nil, domain.ErrTokenAlreadyUsed
}

func (r *InviteRepository) SetConsumer(ctx context.Context, token, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"_id":      token,
		"is_valid": false,
		"used_by":  bson.M{"$exists": false},
	}
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"used_by": userID}})
	if err != nil {
		return fmt.Errorf("set invite consumer: %w", err)
	}
	if res.MatchedCount == 0 {
		if _, err := r.FindByToken(ctx, token); err != nil {
			return err
		}
	}
	return nil
}

func (r *InviteRepository) Invalidate(ctx context.Context, token string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": token, "is_valid": true}, bson.M{"$set": bson.M{"is_valid": false}})
	if err != nil {
		return fmt.Errorf("invalidate invite: %w", err)
	}
	if res.MatchedCount == 0 {
		if _, err := r.FindByToken(ctx, token); err != nil {
			return err
		}
	}
	return nil
}

func (mi *mongoInvite) toDomain() *domain.Invite {
	inv := &domain.Invite{
		Token:     mi.Token,
		IsValid:   mi.IsValid,
		ExpiresAt: mi.ExpiresAt.UTC(),
		CreatedBy: mi.CreatedBy,
		UsedBy:    mi.UsedBy,
		CreatedAt: mi.CreatedAt.UTC(),
	}
	if mi.UsedAt != nil {
		t := mi.UsedAt.UTC()
		inv.UsedAt = &t
	}
	return inv
}
