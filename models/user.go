package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	FullName string             `bson:"fullName" json:"fullName"`
	Username string             `bson:"username" json:"username"`
	Email    string             `bson:"email" json:"email"`
	Password string             `bson:"password" json:"-"`
	Bio      string             `bson:"bio" json:"bio"`
	Avatar   string             `bson:"avatar" json:"avatar"`

	// Best-effort mirror of the testimonies this user has liked; the
	// testimony's own likes array is the source of truth.
	LikedPosts []primitive.ObjectID `bson:"likedPosts" json:"likedPosts"`

	CreatedAt int64 `bson:"createdAt" json:"createdAt"`
	UpdatedAt int64 `bson:"updatedAt" json:"updatedAt"`
}
