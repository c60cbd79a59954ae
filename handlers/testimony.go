package handlers

import (
	"context"
	"log"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/adeymoe/testimony/database"
	"github.com/adeymoe/testimony/models"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const maxMediaFiles = 10

// CreateTestimony stores a new testimony, uploading any attached media files
// to Cloudinary first. Uploads are sequential and not rolled back: a failure
// mid-batch aborts the request and leaves earlier uploads orphaned.
func CreateTestimony(c *gin.Context) {
	userID, ok := viewerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid user ID"})
		return
	}

	title := c.PostForm("title")
	religion := c.PostForm("religion")
	body := c.PostForm("body")

	if body == "" || religion == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing required fields (religion or body)"})
		return
	}
	if !models.IsValidReligion(religion) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Unknown religion category"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	media := []models.Media{}
	if form, err := c.MultipartForm(); err == nil {
		files := form.File["media"]
		if len(files) > maxMediaFiles {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Too many media files (max 10)"})
			return
		}

		if len(files) > 0 {
			cld, err := cloudinary.NewFromURL(os.Getenv("CLOUDINARY_URL"))
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Cloudinary configuration error"})
				return
			}

			for _, fh := range files {
				f, err := fh.Open()
				if err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to read media file"})
					return
				}

				uploadResult, err := cld.Upload.Upload(ctx, f, uploader.UploadParams{
					Folder:       "testimonies",
					PublicID:     uuid.NewString(),
					ResourceType: "auto",
				})
				f.Close()
				if err != nil {
					log.Printf("CreateTestimony upload error: %v", err)
					c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to upload media"})
					return
				}

				media = append(media, models.Media{
					URL:  uploadResult.SecureURL,
					Type: mediaKind(fh.Header.Get("Content-Type")),
				})
			}
		}
	}

	now := time.Now().Unix()
	testimony := models.Testimony{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Title:     title,
		Body:      body,
		Religion:  religion,
		Media:     media,
		Likes:     []primitive.ObjectID{},
		Reactions: map[string][]primitive.ObjectID{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := database.Testimonies.InsertOne(ctx, testimony); err != nil {
		log.Printf("CreateTestimony insert error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create testimony"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Testimony created successfully!"})
}

func mediaKind(contentType string) string {
	switch {
	case strings.HasPrefix(contentType, "video"):
		return models.MediaVideo
	case strings.HasPrefix(contentType, "audio"):
		return models.MediaAudio
	default:
		return models.MediaImage
	}
}

// feedDoc is a testimony joined with its author via $lookup.
type feedDoc struct {
	models.Testimony `bson:",inline"`
	Author           *models.User `bson:"author"`
}

// BuildFeedFilter maps the religion query parameter to a Mongo filter. "All"
// and "Trending" are sentinels meaning no category predicate.
func BuildFeedFilter(religion string) bson.M {
	if religion == "" || religion == "All" || religion == "Trending" {
		return bson.M{}
	}
	return bson.M{"religion": religion}
}

// FeedPageParams parses page/limit with the reference defaults of 1 and 10.
func FeedPageParams(pageStr, limitStr string) (page, limit int) {
	page, _ = strconv.Atoi(pageStr)
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(limitStr)
	if limit < 1 {
		limit = 10
	}
	return page, limit
}

// SortTrending re-orders the fetched page by engagement score descending.
// This is page-local: trending never looks past the page already fetched.
func SortTrending(docs []feedDoc) {
	sort.SliceStable(docs, func(i, j int) bool {
		return ReactionTotal(docs[i].Reactions) > ReactionTotal(docs[j].Reactions)
	})
}

func formatFeedDoc(doc feedDoc, viewer primitive.ObjectID) gin.H {
	counts, userReaction := FormatReactions(doc.Reactions, viewer)

	item := gin.H{
		"_id":           doc.ID,
		"user":          doc.UserID,
		"title":         doc.Title,
		"body":          doc.Body,
		"religion":      doc.Religion,
		"media":         doc.Media,
		"likes":         doc.Likes,
		"totalLikes":    len(doc.Likes),
		"reactions":     counts,
		"userReaction":  userReaction,
		"reactionCount": ReactionTotal(doc.Reactions),
		"createdAt":     doc.CreatedAt,
		"updatedAt":     doc.UpdatedAt,
	}

	if doc.Author != nil {
		item["user"] = gin.H{
			"_id":      doc.Author.ID,
			"username": doc.Author.Username,
			"avatar":   doc.Author.Avatar,
		}
	}
	return item
}

// GetAllTestimonies is the public feed: filterable by religion, paginated,
// sorted latest-first at the store and optionally re-sorted by engagement.
// Works anonymously; a valid bearer token personalizes userReaction.
func GetAllTestimonies(c *gin.Context) {
	viewer, _ := viewerID(c)

	page, limit := FeedPageParams(c.Query("page"), c.Query("limit"))
	filter := BuildFeedFilter(c.Query("religion"))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}}},
		{{Key: "$skip", Value: (page - 1) * limit}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "users"},
			{Key: "localField", Value: "user"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "author"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$author"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
	}

	cursor, err := database.Testimonies.Aggregate(ctx, pipeline)
	if err != nil {
		log.Printf("GetAllTestimonies aggregate error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch testimonies"})
		return
	}
	defer cursor.Close(ctx)

	var docs []feedDoc
	if err := cursor.All(ctx, &docs); err != nil {
		log.Printf("GetAllTestimonies decode error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch testimonies"})
		return
	}

	if c.Query("sort") == "trending" {
		SortTrending(docs)
	}

	data := make([]gin.H, len(docs))
	for i, doc := range docs {
		data[i] = formatFeedDoc(doc, viewer)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func listTestimonies(c *gin.Context, filter bson.M, viewer primitive.ObjectID) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := mongoFindLatest()
	cursor, err := database.Testimonies.Find(ctx, filter, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch testimonies"})
		return
	}
	defer cursor.Close(ctx)

	var testimonies []models.Testimony
	if err := cursor.All(ctx, &testimonies); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch testimonies"})
		return
	}

	data := make([]gin.H, len(testimonies))
	for i, t := range testimonies {
		data[i] = formatFeedDoc(feedDoc{Testimony: t}, viewer)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

// GetMyTestimonies lists the viewer's own testimonies, latest first.
func GetMyTestimonies(c *gin.Context) {
	userID, ok := viewerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid user ID"})
		return
	}
	listTestimonies(c, bson.M{"user": userID}, userID)
}

// GetLikedTestimonies lists the testimonies whose likes contain the viewer.
func GetLikedTestimonies(c *gin.Context) {
	userID, ok := viewerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid user ID"})
		return
	}
	listTestimonies(c, bson.M{"likes": userID}, userID)
}

// ToggleLikeTestimony flips the viewer's like on a testimony. The whole likes
// array is written back with $set, so concurrent toggles are last-write-wins.
func ToggleLikeTestimony(c *gin.Context) {
	userID, ok := viewerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid user ID"})
		return
	}

	testimonyID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid testimony ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var testimony models.Testimony
	err = database.Testimonies.FindOne(ctx, bson.M{"_id": testimonyID}).Decode(&testimony)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Testimony not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to toggle like"})
		return
	}

	likes, liked := ToggleLike(testimony.Likes, userID)

	_, err = database.Testimonies.UpdateOne(ctx, bson.M{"_id": testimonyID}, bson.M{
		"$set": bson.M{"likes": likes, "updatedAt": time.Now().Unix()},
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to toggle like"})
		return
	}

	// Mirror into the user's likedPosts list. Best-effort: the testimony's
	// likes array is the source of truth and the two writes are not
	// transactional.
	mirror := bson.M{"$pull": bson.M{"likedPosts": testimonyID}}
	if liked {
		mirror = bson.M{"$addToSet": bson.M{"likedPosts": testimonyID}}
	}
	if _, err := database.Users.UpdateOne(ctx, bson.M{"_id": userID}, mirror); err != nil {
		log.Printf("ToggleLikeTestimony likedPosts mirror error: %v", err)
	}

	if liked && testimony.UserID != userID {
		SendLikePush(testimony.UserID, userID)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "liked": liked, "totalLikes": len(likes)})
}

type ReactRequest struct {
	Emoji string `json:"emoji" binding:"required"`
}

// ToggleReactTestimony flips the viewer's membership in one emoji's user set
// and returns the resulting public reaction view. Same last-write-wins caveat
// as the like toggle.
func ToggleReactTestimony(c *gin.Context) {
	userID, ok := viewerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid user ID"})
		return
	}

	var req ReactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing emoji"})
		return
	}

	testimonyID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid testimony ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var testimony models.Testimony
	err = database.Testimonies.FindOne(ctx, bson.M{"_id": testimonyID}).Decode(&testimony)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Testimony not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to toggle reaction"})
		return
	}

	reactions := ToggleReaction(testimony.Reactions, userID, req.Emoji)

	_, err = database.Testimonies.UpdateOne(ctx, bson.M{"_id": testimonyID}, bson.M{
		"$set": bson.M{"reactions": reactions, "updatedAt": time.Now().Unix()},
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to toggle reaction"})
		return
	}

	counts, userReaction := FormatReactions(reactions, userID)

	added := containsID(reactions[req.Emoji], userID)
	if added && testimony.UserID != userID {
		SendReactionPush(testimony.UserID, userID, req.Emoji)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "reactions": counts, "userReaction": userReaction})
}
