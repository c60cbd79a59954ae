package handlers

import (
	"testing"

	"github.com/adeymoe/testimony/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestBuildFeedFilter(t *testing.T) {
	assert.Equal(t, bson.M{}, BuildFeedFilter(""))
	assert.Equal(t, bson.M{}, BuildFeedFilter("All"))
	assert.Equal(t, bson.M{}, BuildFeedFilter("Trending"))
	assert.Equal(t, bson.M{"religion": "Islam"}, BuildFeedFilter("Islam"))
	assert.Equal(t, bson.M{"religion": "Buddhism"}, BuildFeedFilter("Buddhism"))
}

func TestFeedPageParams(t *testing.T) {
	page, limit := FeedPageParams("", "")
	assert.Equal(t, 1, page)
	assert.Equal(t, 10, limit)

	page, limit = FeedPageParams("3", "25")
	assert.Equal(t, 3, page)
	assert.Equal(t, 25, limit)

	// Garbage and non-positive values fall back to the defaults
	page, limit = FeedPageParams("abc", "-5")
	assert.Equal(t, 1, page)
	assert.Equal(t, 10, limit)
}

func TestSortTrending(t *testing.T) {
	mk := func(reactionUsers int) feedDoc {
		reactions := map[string][]primitive.ObjectID{}
		if reactionUsers > 0 {
			users := make([]primitive.ObjectID, reactionUsers)
			for i := range users {
				users[i] = primitive.NewObjectID()
			}
			reactions["🔥"] = users
		}
		return feedDoc{Testimony: models.Testimony{
			ID:        primitive.NewObjectID(),
			Reactions: reactions,
		}}
	}

	cold := mk(0)
	warm := mk(2)
	hot := mk(5)

	docs := []feedDoc{cold, warm, hot}
	SortTrending(docs)

	assert.Equal(t, hot.ID, docs[0].ID)
	assert.Equal(t, warm.ID, docs[1].ID)
	assert.Equal(t, cold.ID, docs[2].ID)
}

func TestSortTrending_StableForTies(t *testing.T) {
	first := feedDoc{Testimony: models.Testimony{ID: primitive.NewObjectID()}}
	second := feedDoc{Testimony: models.Testimony{ID: primitive.NewObjectID()}}

	docs := []feedDoc{first, second}
	SortTrending(docs)

	// Equal scores keep their latest-first order from the store
	assert.Equal(t, first.ID, docs[0].ID)
	assert.Equal(t, second.ID, docs[1].ID)
}

func TestFormatFeedDoc(t *testing.T) {
	author := &models.User{
		ID:       primitive.NewObjectID(),
		Username: "ada",
		Avatar:   "https://example.com/a.png",
	}
	viewer := primitive.NewObjectID()

	doc := feedDoc{
		Testimony: models.Testimony{
			ID:       primitive.NewObjectID(),
			UserID:   author.ID,
			Body:     "hello",
			Religion: models.ReligionBuddhism,
			Likes:    []primitive.ObjectID{viewer},
			Reactions: map[string][]primitive.ObjectID{
				"🔥": {viewer},
			},
		},
		Author: author,
	}

	item := formatFeedDoc(doc, viewer)

	assert.Equal(t, "hello", item["body"])
	assert.Equal(t, 1, item["totalLikes"])
	assert.Equal(t, 1, item["reactionCount"])
	assert.Equal(t, map[string]int{"🔥": 1}, item["reactions"])

	userReaction, ok := item["userReaction"].(*string)
	assert.True(t, ok)
	if assert.NotNil(t, userReaction) {
		assert.Equal(t, "🔥", *userReaction)
	}

	user, ok := item["user"].(gin.H)
	if assert.True(t, ok) {
		assert.Equal(t, "ada", user["username"])
	}
}

func TestFormatFeedDoc_NoAuthorKeepsRawID(t *testing.T) {
	owner := primitive.NewObjectID()
	doc := feedDoc{Testimony: models.Testimony{
		ID:     primitive.NewObjectID(),
		UserID: owner,
		Body:   "no lookup",
	}}

	item := formatFeedDoc(doc, primitive.NilObjectID)
	assert.Equal(t, owner, item["user"])
	assert.Nil(t, item["userReaction"].(*string))
}
