package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Religion categories a testimony can be filed under.
const (
	ReligionChristianity = "Christianity"
	ReligionIslam        = "Islam"
	ReligionJudaism      = "Judaism"
	ReligionHinduism     = "Hinduism"
	ReligionBuddhism     = "Buddhism"
	ReligionOther        = "Other"
)

var Religions = []string{
	ReligionChristianity,
	ReligionIslam,
	ReligionJudaism,
	ReligionHinduism,
	ReligionBuddhism,
	ReligionOther,
}

func IsValidReligion(r string) bool {
	for _, v := range Religions {
		if v == r {
			return true
		}
	}
	return false
}

// Media kinds supported for testimony attachments.
const (
	MediaImage = "image"
	MediaVideo = "video"
	MediaAudio = "audio"
)

type Media struct {
	URL  string `bson:"url" json:"url"`
	Type string `bson:"type" json:"type"`
}

type Testimony struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID   primitive.ObjectID `bson:"user" json:"user"`
	Title    string             `bson:"title,omitempty" json:"title,omitempty"`
	Body     string             `bson:"body" json:"body"`
	Religion string             `bson:"religion" json:"religion"`
	Media    []Media            `bson:"media" json:"media"`

	// Likes is a set of user ids; membership matters, order does not.
	Likes []primitive.ObjectID `bson:"likes" json:"likes"`

	// Reactions maps an emoji to the set of user ids holding it. Empty
	// sets are never stored; the key is removed instead.
	Reactions map[string][]primitive.ObjectID `bson:"reactions" json:"reactions"`

	CreatedAt int64 `bson:"createdAt" json:"createdAt"`
	UpdatedAt int64 `bson:"updatedAt" json:"updatedAt"`
}
