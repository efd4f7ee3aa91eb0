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

const notificationsCollection = "notifications"

type NotificationRepository struct {
	col *mongo.Collection
}

func NewNotificationRepository(db *mongo.Database) *NotificationRepository {
	return &NotificationRepository{col: db.Collection(notificationsCollection)}
}

// The recipient is stored in its wire form so the inbox query can match it
// with a plain $in.
type mongoNotification struct {
	ID        string    `bson:"_id"`
	SenderID  string    `bson:"sender_id"`
	Recipient string    `bson:"recipient"`
	Content   string    `bson:"content"`
	IsRead    bool      `bson:"is_read"`
	CreatedAt time.Time `bson:"created_at"`
}

func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoNotification{
		ID:        n.ID,
		SenderID:  n.SenderID,
		Recipient: n.Recipient.String(),
		Content:   n.Content,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt.UTC(),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (r *NotificationRepository) FindByID(ctx context.Context, id string) (*domain.Notification, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mn mongoNotification
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&mn); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotificationNotFound
		}
		return nil, fmt.Errorf("find notification: %w", err)
	}
	return mn.toDomain(), nil
}

func (r *NotificationRepository) ListVisible(ctx context.Context, identityID string, privileged bool) ([]*domain.Notification, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	recipients := bson.A{domain.RecipientAll, identityID}
	if privileged {
		recipients = append(recipients, domain.RecipientAdmin)
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})

	cur, err := r.col.Find(ctx, bson.M{"recipient": bson.M{"$in": recipients}}, opts)
	if err != nil {
		return nil, fmt.Errorf("find notifications: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoNotification
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode notifications: %w", err)
	}

	out := make([]*domain.Notification, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id string) (*domain.Notification, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var mn mongoNotification
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"is_read": true}}, opts).Decode(&mn)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotificationNotFound
		}
		return nil, fmt.Errorf("mark notification read: %w", err)
	}
	return mn.toDomain(), nil
}

func (mn *mongoNotification) toDomain() *domain.Notification {
	return &domain.Notification{
		ID:        mn.ID,
		SenderID:  mn.SenderID,
		Recipient: domain.ParseRecipient(mn.Recipient),
		Content:   mn.Content,
		IsRead:    mn.IsRead,
		CreatedAt: mn.CreatedAt.UTC(),
	}
}
