package mongo

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/teamcuriosity/collective/internal/core/domain"
)

var consumeNow = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

func inviteDoc(token string, valid bool, expiresAt time.Time) bson.D {
	return bson.D{
		{Key: "_id", Value: token},
		{Key: "is_valid", Value: valid},
		{Key: "expires_at", Value: expiresAt},
		{Key: "created_by", Value: "admin-1"},
		{Key: "created_at", Value: consumeNow.Add(-time.Hour)},
	}
}

func namespace(mt *mtest.T) string {
	return mt.Coll.Database().Name() + "." + mt.Coll.Name()
}

// findAndModifyResult is the server reply to FindOneAndUpdate. A nil doc
// means the filter matched nothing.
func findAndModifyResult(doc bson.D) bson.D {
	if doc == nil {
		return mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil})
	}
	return mtest.CreateSuccessResponse(bson.E{Key: "value", Value: doc})
}

// findOneResult is the server reply to FindOne. No docs means not found.
func findOneResult(mt *mtest.T, docs ...bson.D) bson.D {
	return mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch, docs...)
}

func updateResult(matched int) bson.D {
	return mtest.CreateSuccessResponse(
		bson.E{Key: "n", Value: matched},
		bson.E{Key: "nModified", Value: matched},
	)
}

func TestInviteRepository_Consume(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("success", func(mt *mtest.T) {
		repo := &InviteRepository{col: mt.Coll}
		consumed := append(inviteDoc("tok", false, consumeNow.Add(time.Hour)), bson.E{Key: "used_at", Value: consumeNow})
		mt.AddMockResponses(findAndModifyResult(consumed))

		inv, err := repo.Consume(context.Background(), "tok", consumeNow)
		if err != nil {
			mt.Fatalf("Consume returned error: %v", err)
		}
		if inv.IsValid || inv.UsedAt == nil || !inv.UsedAt.Equal(consumeNow) {
			mt.Fatalf("unexpected invite: %+v", inv)
		}
	})

	mt.Run("filter carries every redemption condition", func(mt *mtest.T) {
		repo := &InviteRepository{col: mt.Coll}
		mt.AddMockResponses(findAndModifyResult(inviteDoc("tok", false, consumeNow.Add(time.Hour))))

		if _, err := repo.Consume(context.Background(), "tok", consumeNow); err != nil {
			mt.Fatalf("Consume returned error: %v", err)
		}

		started := mt.GetStartedEvent()
		if started == nil || started.CommandName != "findAndModify" {
			mt.Fatalf("expected a findAndModify command, got %+v", started)
		}
		query := started.Command.Lookup("query").Document()
		if query.Lookup("_id").StringValue() != "tok" {
			mt.Fatalf("filter must select the token: %v", query)
		}
		if !query.Lookup("is_valid").Boolean() {
			mt.Fatalf("filter must require is_valid=true: %v", query)
		}
		gt, ok := query.Lookup("expires_at").Document().Lookup("$gt").DateTimeOK()
		if !ok || gt != consumeNow.UnixMilli() {
			mt.Fatalf("filter must require expires_at > now: %v", query)
		}
	})

	cases := []struct {
		name    string
		current []bson.D
		want    error
	}{
		{"unknown token", nil, domain.ErrTokenNotFound},
		{"expired while still flagged valid", []bson.D{inviteDoc("tok", true, consumeNow.Add(-time.Minute))}, domain.ErrTokenExpired},
		{"expires exactly now", []bson.D{inviteDoc("tok", true, consumeNow)}, domain.ErrTokenExpired},
		{"already consumed", []bson.D{inviteDoc("tok", false, consumeNow.Add(time.Hour))}, domain.ErrTokenAlreadyUsed},
		{"lost the race", []bson.D{inviteDoc("tok", true, consumeNow.Add(time.Hour))}, domain.ErrTokenAlreadyUsed},
	}
	for _, tc := range cases {
		mt.Run(tc.name, func(mt *mtest.T) {
			repo := &InviteRepository{col: mt.Coll}
			mt.AddMockResponses(findAndModifyResult(nil), findOneResult(mt, tc.current...))

			inv, err := repo.Consume(context.Background(), "tok", consumeNow)
			if !errors.Is(err, tc.want) {
				mt.Fatalf("expected %v, got %v (%+v)", tc.want, err, inv)
			}
		})
	}

	mt.Run("driver error", func(mt *mtest.T) {
		repo := &InviteRepository{col: mt.Coll}
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Message: "bad value"}))

		_, err := repo.Consume(context.Background(), "tok", consumeNow)
		if err == nil || domain.KindOf(err) != domain.KindInternal {
			mt.Fatalf("expected an internal error, got %v", err)
		}
	})
}

func TestInviteRepository_SetConsumer(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("records the first consumer", func(mt *mtest.T) {
		repo := &InviteRepository{col: mt.Coll}
		mt.AddMockResponses(updateResult(1))

		if err := repo.SetConsumer(context.Background(), "tok", "u2"); err != nil {
			mt.Fatalf("SetConsumer returned error: %v", err)
		}
		query := mt.GetStartedEvent().Command.Lookup("updates").Array().Index(0).Value().Document().Lookup("q").Document()
		if query.Lookup("is_valid").Boolean() {
			mt.Fatalf("filter must only match consumed invites: %v", query)
		}
		exists, ok := query.Lookup("used_by").Document().Lookup("$exists").BooleanOK()
		if !ok || exists {
			mt.Fatalf("filter must skip invites that already have a consumer: %v", query)
		}
	})

	mt.Run("keeps an existing consumer", func(mt *mtest.T) {
		repo := &InviteRepository{col: mt.Coll}
		existing := append(inviteDoc("tok", false, consumeNow.Add(time.Hour)), bson.E{Key: "used_by", Value: "u1"})
		mt.AddMockResponses(updateResult(0), findOneResult(mt, existing))

		if err := repo.SetConsumer(context.Background(), "tok", "u2"); err != nil {
			mt.Fatalf("expected a no-op, got %v", err)
		}
	})

	mt.Run("unknown token", func(mt *mtest.T) {
		repo := &InviteRepository{col: mt.Coll}
		mt.AddMockResponses(updateResult(0), findOneResult(mt))

		if err := repo.SetConsumer(context.Background(), "tok", "u2"); !errors.Is(err, domain.ErrTokenNotFound) {
			mt.Fatalf("expected ErrTokenNotFound, got %v", err)
		}
	})
}

func TestInviteRepository_Create_Duplicate(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("duplicate token", func(mt *mtest.T) {
		repo := &InviteRepository{col: mt.Coll}
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key error"}))

		err := repo.Create(context.Background(), &domain.Invite{Token: "tok", IsValid: true, ExpiresAt: consumeNow.Add(time.Hour)})
		if !errors.Is(err, domain.ErrDuplicateToken) {
			mt.Fatalf("expected ErrDuplicateToken, got %v", err)
		}
	})
}
