package handlers

import (
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// The reaction and like toggles below are pure transforms over the decoded
// testimony fields. Handlers apply them and write the whole field back with
// $set, so concurrent toggles on the same testimony are last-write-wins.

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func removeID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// ToggleReaction flips userID's membership in the emoji's user set. An emoji
// whose set empties is removed from the map entirely. Other emojis the user
// may hold are left untouched: the reference implementation never enforced
// one-reaction-per-user, so a user can hold several emojis at once.
func ToggleReaction(reactions map[string][]primitive.ObjectID, userID primitive.ObjectID, emoji string) map[string][]primitive.ObjectID {
	if reactions == nil {
		reactions = make(map[string][]primitive.ObjectID)
	}

	users := reactions[emoji]
	if containsID(users, userID) {
		users = removeID(users, userID)
		if len(users) == 0 {
			delete(reactions, emoji)
		} else {
			reactions[emoji] = users
		}
	} else {
		reactions[emoji] = append(users, userID)
	}
	return reactions
}

// FormatReactions converts stored reactions into the public emoji -> count
// view, plus the emoji the viewer holds. Pass primitive.NilObjectID for an
// anonymous viewer. When a viewer holds several emojis the lexicographically
// smallest wins, so the answer is stable across map iteration orders.
func FormatReactions(reactions map[string][]primitive.ObjectID, viewerID primitive.ObjectID) (map[string]int, *string) {
	counts := make(map[string]int, len(reactions))

	emojis := make([]string, 0, len(reactions))
	for emoji := range reactions {
		emojis = append(emojis, emoji)
	}
	sort.Strings(emojis)

	var userReaction *string
	for _, emoji := range emojis {
		users := reactions[emoji]
		counts[emoji] = len(users)
		if userReaction == nil && viewerID != primitive.NilObjectID && containsID(users, viewerID) {
			e := emoji
			userReaction = &e
		}
	}
	return counts, userReaction
}

// ReactionTotal is a testimony's engagement score: the number of stored
// (emoji, user) pairs.
func ReactionTotal(reactions map[string][]primitive.ObjectID) int {
	total := 0
	for _, users := range reactions {
		total += len(users)
	}
	return total
}

// ToggleLike flips userID's membership in the likes set and reports the
// resulting membership.
func ToggleLike(likes []primitive.ObjectID, userID primitive.ObjectID) ([]primitive.ObjectID, bool) {
	if containsID(likes, userID) {
		return removeID(likes, userID), false
	}
	return append(likes, userID), true
}
