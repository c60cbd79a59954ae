package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestToggleReaction_AddThenRemove(t *testing.T) {
	user := primitive.NewObjectID()

	reactions := ToggleReaction(nil, user, "🔥")
	counts, userReaction := FormatReactions(reactions, user)

	require.NotNil(t, userReaction)
	assert.Equal(t, "🔥", *userReaction)
	assert.Equal(t, map[string]int{"🔥": 1}, counts)

	// Second toggle returns to the original state and prunes the empty set
	reactions = ToggleReaction(reactions, user, "🔥")
	counts, userReaction = FormatReactions(reactions, user)

	assert.Nil(t, userReaction)
	assert.Empty(t, counts)
	_, exists := reactions["🔥"]
	assert.False(t, exists, "empty emoji sets must not be retained")
}

func TestToggleReaction_OtherUsersUnaffected(t *testing.T) {
	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()

	reactions := ToggleReaction(nil, alice, "🙏")
	reactions = ToggleReaction(reactions, bob, "🙏")
	require.Len(t, reactions["🙏"], 2)

	reactions = ToggleReaction(reactions, alice, "🙏")
	require.Len(t, reactions["🙏"], 1)
	assert.Equal(t, bob, reactions["🙏"][0])

	counts, userReaction := FormatReactions(reactions, alice)
	assert.Equal(t, 1, counts["🙏"])
	assert.Nil(t, userReaction)
}

func TestToggleReaction_DoesNotClearOtherEmojis(t *testing.T) {
	// Reference behavior: reacting with a second emoji does not release the
	// first, so a user can hold several at once.
	user := primitive.NewObjectID()

	reactions := ToggleReaction(nil, user, "🔥")
	reactions = ToggleReaction(reactions, user, "🙏")

	assert.Len(t, reactions["🔥"], 1)
	assert.Len(t, reactions["🙏"], 1)
	assert.Equal(t, 2, ReactionTotal(reactions))

	// The reported userReaction is deterministic: smallest emoji wins
	counts, userReaction := FormatReactions(reactions, user)
	require.NotNil(t, userReaction)
	assert.Equal(t, "🔥", *userReaction)
	assert.Equal(t, map[string]int{"🔥": 1, "🙏": 1}, counts)
}

func TestFormatReactions_AnonymousViewer(t *testing.T) {
	user := primitive.NewObjectID()
	reactions := ToggleReaction(nil, user, "❤️")

	counts, userReaction := FormatReactions(reactions, primitive.NilObjectID)
	assert.Equal(t, map[string]int{"❤️": 1}, counts)
	assert.Nil(t, userReaction)
}

func TestReactionTotal(t *testing.T) {
	assert.Equal(t, 0, ReactionTotal(nil))

	reactions := map[string][]primitive.ObjectID{
		"🔥": {primitive.NewObjectID(), primitive.NewObjectID()},
		"🙏": {primitive.NewObjectID()},
	}
	assert.Equal(t, 3, ReactionTotal(reactions))
}

func TestToggleLike_DoubleToggleRestores(t *testing.T) {
	user := primitive.NewObjectID()
	other := primitive.NewObjectID()
	likes := []primitive.ObjectID{other}

	likes, liked := ToggleLike(likes, user)
	assert.True(t, liked)
	assert.Len(t, likes, 2)

	likes, liked = ToggleLike(likes, user)
	assert.False(t, liked)
	require.Len(t, likes, 1)
	assert.Equal(t, other, likes[0])
}
