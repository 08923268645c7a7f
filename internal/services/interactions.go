package services

import (
	"context"
	"strings"
	"time"

	"github.com/AnshRaj112/catchlog-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const InteractionsCollection = "interactions"

// InteractionCounts is the like and comment tally of one catch.
type InteractionCounts struct {
	Likes    int64 `json:"likes"`
	Comments int64 `json:"comments"`
}

// InteractionStore keeps likes and comments on catches in MongoDB.
type InteractionStore struct {
	col *mongo.Collection
}

func NewInteractionStore(db *mongo.Database) *InteractionStore {
	return &InteractionStore{col: db.Collection(InteractionsCollection)}
}

// EnsureIndexes configures indexes for the interactions collection.
// Called on startup from main after Mongo has connected.
func (s *InteractionStore) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			// Supports comment pagination per catch.
			Keys: bson.D{
				{Key: "catch_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("idx_catch_created"),
		},
		{
			// One like per user and catch.
			Keys: bson.D{
				{Key: "catch_id", Value: 1},
				{Key: "user_id", Value: 1},
			},
			Options: options.Index().
				SetName("uniq_like_per_user").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"type": string(models.InteractionLike)}),
		},
	}

	_, err := s.col.Indexes().CreateMany(ctx, indexes)
	return err
}

// Like records a like. It reports false when the user already liked the catch.
func (s *InteractionStore) Like(ctx context.Context, catchID, userID, username string) (*models.Interaction, bool, error) {
	like := &models.Interaction{
		Type:      models.InteractionLike,
		CatchID:   catchID,
		UserID:    userID,
		Username:  username,
		CreatedAt: time.Now().UTC(),
	}
	if err := models.ValidateInteraction(like); err != nil {
		return nil, false, err
	}

	res, err := s.col.InsertOne(ctx, like)
	if mongo.IsDuplicateKeyError(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	like.ID = objectID(res.InsertedID)
	return like, true, nil
}

// Unlike removes the user's like and reports whether there was one.
func (s *InteractionStore) Unlike(ctx context.Context, catchID, userID string) (bool, error) {
	res, err := s.col.DeleteOne(ctx, bson.M{
		"type":     models.InteractionLike,
		"catch_id": catchID,
		"user_id":  userID,
	})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// AddComment validates and stores a comment.
func (s *InteractionStore) AddComment(ctx context.Context, c *models.Interaction) (*models.Interaction, error) {
	c.Type = models.InteractionComment
	c.Content = strings.TrimSpace(c.Content)
	if err := models.ValidateInteraction(c); err != nil {
		return nil, err
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	res, err := s.col.InsertOne(ctx, c)
	if err != nil {
		return nil, err
	}
	c.ID = objectID(res.InsertedID)
	return c, nil
}

// Comments returns paginated comments for a catch, oldest first.
// Pagination is based on created_at + limit (newest-first scrolling).
func (s *InteractionStore) Comments(ctx context.Context, catchID string, before *time.Time, limit int64) ([]models.Interaction, bool, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	filter := bson.M{
		"type":     models.InteractionComment,
		"catch_id": catchID,
	}
	if before != nil {
		filter["created_at"] = bson.M{"$lt": before.UTC()}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit + 1)

	cur, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, false, err
	}
	defer cur.Close(ctx)

	comments := []models.Interaction{}
	for cur.Next(ctx) {
		var c models.Interaction
		if err := cur.Decode(&c); err != nil {
			continue
		}
		comments = append(comments, c)
	}
	if err := cur.Err(); err != nil {
		return nil, false, err
	}

	hasMore := int64(len(comments)) > limit
	if hasMore {
		comments = comments[:len(comments)-1]
	}

	// Reverse to oldest-first for the UI.
	for i, j := 0, len(comments)-1; i < j; i, j = i+1, j-1 {
		comments[i], comments[j] = comments[j], comments[i]
	}
	return comments, hasMore, nil
}

// Counts tallies likes and comments for each of catchIDs.
func (s *InteractionStore) Counts(ctx context.Context, catchIDs []string) (map[string]InteractionCounts, error) {
	out := make(map[string]InteractionCounts, len(catchIDs))
	if len(catchIDs) == 0 {
		return out, nil
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"catch_id": bson.M{"$in": catchIDs}}}},
		{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"catch_id": "$catch_id", "type": "$type"},
			"count": bson.M{"$sum": 1},
		}}},
	}
	cur, err := s.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var row struct {
			ID struct {
				CatchID string                 `bson:"catch_id"`
				Type    models.InteractionType `bson:"type"`
			} `bson:"_id"`
			Count int64 `bson:"count"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		c := out[row.ID.CatchID]
		switch row.ID.Type {
		case models.InteractionLike:
			c.Likes = row.Count
		case models.InteractionComment:
			c.Comments = row.Count
		}
		out[row.ID.CatchID] = c
	}
	return out, cur.Err()
}

func objectID(v interface{}) primitive.ObjectID {
	id, _ := v.(primitive.ObjectID)
	return id
}
