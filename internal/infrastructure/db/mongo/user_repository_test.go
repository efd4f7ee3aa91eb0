package mongo

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/teamcuriosity/collective/internal/core/domain"
)

func TestUserRepository_Bootstrap(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("claim", func(mt *mtest.T) {
		repo := &UserRepository{coll: mt.Coll, flags: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		if err := repo.ClaimBootstrap(context.Background()); err != nil {
			mt.Fatalf("ClaimBootstrap returned error: %v", err)
		}
	})

	mt.Run("already claimed", func(mt *mtest.T) {
		repo := &UserRepository{coll: mt.Coll, flags: mt.Coll}
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key error"}))

		if err := repo.ClaimBootstrap(context.Background()); !errors.Is(err, domain.ErrBootstrapConsumed) {
			mt.Fatalf("expected ErrBootstrapConsumed, got %v", err)
		}
	})

	mt.Run("release deletes the marker", func(mt *mtest.T) {
		repo := &UserRepository{coll: mt.Coll, flags: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		if err := repo.ReleaseBootstrap(context.Background()); err != nil {
			mt.Fatalf("ReleaseBootstrap returned error: %v", err)
		}
		started := mt.GetStartedEvent()
		if started == nil || started.CommandName != "delete" {
			mt.Fatalf("expected a delete command, got %+v", started)
		}
		q := started.Command.Lookup("deletes").Array().Index(0).Value().Document().Lookup("q").Document()
		if q.Lookup("_id").StringValue() != bootstrapFlagID {
			mt.Fatalf("release must target the bootstrap marker: %v", q)
		}
	})
}
