package models

import (
	"strings"
	"time"

	"github.com/AnshRaj112/catchlog-backend/pkg/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InteractionType is either a like or a comment on a catch.
type InteractionType string

const (
	InteractionLike    InteractionType = "like"
	InteractionComment InteractionType = "comment"
)

// MaxCommentLength bounds comment content.
const MaxCommentLength = 1000

// Interaction is stored in MongoDB, one document per like or comment.
type Interaction struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Type      InteractionType    `bson:"type" json:"type"`
	CatchID   string             `bson:"catch_id" json:"catch_id"`
	UserID    string             `bson:"user_id" json:"user_id"`
	Username  string             `bson:"username,omitempty" json:"username,omitempty"`
	Content   string             `bson:"content,omitempty" json:"content,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// ValidateInteraction enforces that content is present iff the interaction is a comment.
func ValidateInteraction(i *Interaction) error {
	if i.CatchID == "" {
		return &utils.ValidationError{Field: "catch_id", Message: "Catch is required"}
	}
	if i.UserID == "" {
		return &utils.ValidationError{Field: "user_id", Message: "User is required"}
	}
	content := strings.TrimSpace(i.Content)
	switch i.Type {
	case InteractionLike:
		if content != "" {
			return &utils.ValidationError{Field: "content", Message: "Likes carry no content"}
		}
	case InteractionComment:
		if content == "" {
			return &utils.ValidationError{Field: "content", Message: "Comment cannot be empty"}
		}
		if len(content) > MaxCommentLength {
			return &utils.ValidationError{Field: "content", Message: "Comment is too long"}
		}
	default:
		return &utils.ValidationError{Field: "type", Message: "Interaction must be a like or a comment"}
	}
	return nil
}
