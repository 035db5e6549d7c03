// Package mongostore keeps projects and users as documents, with comments
// and backer ids embedded in the project document.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"crowdfund-go/internal/model"
	"crowdfund-go/internal/repositories"
)

type projectDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Category    string             `bson:"category"`
	Creator     string             `bson:"creator"`
	Date        time.Time          `bson:"date"`
	PledgeGoal  float64            `bson:"pledgeGoal"`
	Collected   float64            `bson:"collected"`
	Description string             `bson:"description"`
	Backers     []string           `bson:"backers"`
	Comments    []commentDocument  `bson:"comments"`
	Active      bool               `bson:"active"`
}

type commentDocument struct {
	Poster   string    `bson:"poster"`
	Comment  string    `bson:"comment"`
	PostedAt time.Time `bson:"postedAt"`
}

type ProjectRepository struct {
	coll *mongo.Collection
}

func NewProjectRepository(database *mongo.Database) *ProjectRepository {
	return &ProjectRepository{coll: database.Collection("projects")}
}

func (r *ProjectRepository) List(ctx context.Context) ([]model.Project, error) {
	return r.find(ctx, bson.D{})
}

func (r *ProjectRepository) ListByCategory(ctx context.Context, category string) ([]model.Project, error) {
	return r.find(ctx, bson.D{{Key: "category", Value: category}})
}

func (r *ProjectRepository) Get(ctx context.Context, id string) (model.Project, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return model.Project{}, repositories.ErrNotFound
	}
	var doc projectDocument
	err = r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Project{}, repositories.ErrNotFound
	}
	if err != nil {
		return model.Project{}, fmt.Errorf("get project: %w", err)
	}
	return doc.toModel(), nil
}

func (r *ProjectRepository) Create(ctx context.Context, input model.ProjectCreate) (model.Project, error) {
	date := input.CreatedAt
	if date.IsZero() {
		date = time.Now()
	}
	doc := projectDocument{
		ID:          primitive.NewObjectID(),
		Title:       input.Title,
		Category:    input.Category,
		Creator:     input.CreatorID,
		Date:        date.UTC().Truncate(time.Millisecond),
		PledgeGoal:  input.PledgeGoal,
		Description: input.Description,
		Backers:     []string{},
		Comments:    []commentDocument{},
		Active:      true,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return model.Project{}, fmt.Errorf("insert project: %w", err)
	}
	return doc.toModel(), nil
}

func (r *ProjectRepository) Update(ctx context.Context, id string, input model.ProjectUpdate) (model.Project, error) {
	return r.findAndUpdate(ctx, id, bson.D{}, bson.D{{Key: "$set", Value: bson.D{
		{Key: "title", Value: input.Title},
		{Key: "category", Value: input.Category},
		{Key: "pledgeGoal", Value: input.PledgeGoal},
		{Key: "description", Value: input.Description},
	}}})
}

// Donate relies on single-document atomicity: the $inc and the backer
// $addToSet only apply while the document is still active.
func (r *ProjectRepository) Donate(ctx context.Context, id string, amount float64, backerID string) (model.Project, error) {
	project, err := r.findAndUpdate(ctx, id, bson.D{{Key: "active", Value: true}}, bson.D{
		{Key: "$inc", Value: bson.D{{Key: "collected", Value: amount}}},
		{Key: "$addToSet", Value: bson.D{{Key: "backers", Value: backerID}}},
	})
	if !errors.Is(err, repositories.ErrNotFound) {
		return project, err
	}

	oid, _ := primitive.ObjectIDFromHex(id)
	n, countErr := r.coll.CountDocuments(ctx, bson.D{{Key: "_id", Value: oid}})
	if countErr != nil {
		return model.Project{}, fmt.Errorf("load project state: %w", countErr)
	}
	if n > 0 {
		return model.Project{}, repositories.ErrInactive
	}
	return model.Project{}, repositories.ErrNotFound
}

func (r *ProjectRepository) AddComment(ctx context.Context, id string, comment model.Comment) (model.Comment, error) {
	if comment.PostedAt.IsZero() {
		comment.PostedAt = time.Now()
	}
	comment.PostedAt = comment.PostedAt.UTC().Truncate(time.Millisecond)
	doc := commentDocument{Poster: comment.PosterID, Comment: comment.Text, PostedAt: comment.PostedAt}

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return model.Comment{}, repositories.ErrNotFound
	}
	res, err := r.coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: oid}}, bson.D{{Key: "$push", Value: bson.D{{Key: "comments", Value: doc}}}})
	if err != nil {
		return model.Comment{}, fmt.Errorf("push comment: %w", err)
	}
	if res.MatchedCount == 0 {
		return model.Comment{}, repositories.ErrNotFound
	}
	return comment, nil
}

func (r *ProjectRepository) SetActive(ctx context.Context, id string, active bool) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repositories.ErrNotFound
	}
	res, err := r.coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: oid}}, bson.D{{Key: "$set", Value: bson.D{{Key: "active", Value: active}}}})
	if err != nil {
		return fmt.Errorf("set project active: %w", err)
	}
	if res.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (r *ProjectRepository) find(ctx context.Context, filter bson.D) ([]model.Project, error) {
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find projects: %w", err)
	}
	var docs []projectDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode projects: %w", err)
	}

	projects := make([]model.Project, 0, len(docs))
	for _, doc := range docs {
		projects = append(projects, doc.toModel())
	}
	return projects, nil
}

func (r *ProjectRepository) findAndUpdate(ctx context.Context, id string, extra bson.D, update bson.D) (model.Project, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return model.Project{}, repositories.ErrNotFound
	}
	filter := append(bson.D{{Key: "_id", Value: oid}}, extra...)

	var doc projectDocument
	err = r.coll.FindOneAndUpdate(ctx, filter, update, options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Project{}, repositories.ErrNotFound
	}
	if err != nil {
		return model.Project{}, fmt.Errorf("update project: %w", err)
	}
	return doc.toModel(), nil
}

func (d projectDocument) toModel() model.Project {
	p := model.Project{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Category:    d.Category,
		CreatorID:   d.Creator,
		CreatedAt:   d.Date,
		PledgeGoal:  d.PledgeGoal,
		Collected:   d.Collected,
		Description: d.Description,
		Backers:     append([]string{}, d.Backers...),
		Comments:    make([]model.Comment, 0, len(d.Comments)),
		Active:      d.Active,
	}
	for _, c := range d.Comments {
		p.Comments = append(p.Comments, model.Comment{PosterID: c.Poster, Text: c.Comment, PostedAt: c.PostedAt})
	}
	return p
}
