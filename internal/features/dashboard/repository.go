package dashboard

import (
	"context"
	"regexp"
	"time"

	"go-opsboard/internal/apperrors"
	common_models "go-opsboard/internal/common/models"
	"go-opsboard/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type DashboardRepository interface {
	Create(ctx context.Context, dashboard *Dashboard) error
	Get(ctx context.Context, id primitive.ObjectID) (*Dashboard, error)
	// Touch records a read access: increments the view counter and stamps
	// last_accessed_at. It never bumps the version.
	Touch(ctx context.Context, id primitive.ObjectID) error
	// ApplyPatch performs a version-checked update and returns the updated
	// document. ErrVersionConflict when the stored version moved on,
	// ErrNotFound when the id is unknown.
	ApplyPatch(ctx context.Context, id primitive.ObjectID, expectedVersion int64, set bson.M) (*Dashboard, error)
	// Deactivate logically deletes the dashboard.
	Deactivate(ctx context.Context, id primitive.ObjectID) error
	ListOwned(ctx context.Context, ownerID primitive.ObjectID, activeOnly bool, page common_models.PageRequest) ([]Dashboard, int64, error)
	ListPublic(ctx context.Context, page common_models.PageRequest) ([]Dashboard, int64, error)
	Search(ctx context.Context, term string, page common_models.PageRequest) ([]Dashboard, int64, error)
	ListPopular(ctx context.Context, page common_models.PageRequest) ([]Dashboard, int64, error)
	EnsureIndexes(ctx context.Context) error
}

type DashboardRepositoryImpl struct {
	collection *mongo.Collection
}

func NewDashboardRepository(db *database.MongodbDB) DashboardRepository {
	return &DashboardRepositoryImpl{
		collection: db.DB.Collection("dashboards"),
	}
}

// updatedDescIDAsc is the default ordering: last-updated first, id ascending
// as the deterministic tie-break.
var updatedDescIDAsc = bson.D{{Key: "updated_at", Value: -1}, {Key: "_id", Value: 1}}

func (r *DashboardRepositoryImpl) Create(ctx context.Context, dashboard *Dashboard) error {
	if dashboard.ID.IsZero() {
		dashboard.ID = primitive.NewObjectID()
	}
	now := time.Now()
	dashboard.CreatedAt = now
	dashboard.UpdatedAt = now
	dashboard.Version = 1
	dashboard.ViewCount = 0
	dashboard.IsActive = true

	_, err := r.collection.InsertOne(ctx, dashboard)
	return err
}

func (r *DashboardRepositoryImpl) Get(ctx context.Context, id primitive.ObjectID) (*Dashboard, error) {
	var dashboard Dashboard
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&dashboard)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &dashboard, nil
}

func (r *DashboardRepositoryImpl) Touch(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$inc": bson.M{"view_count": 1},
		"$set": bson.M{"last_accessed_at": time.Now()},
	})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *DashboardRepositoryImpl) ApplyPatch(ctx context.Context, id primitive.ObjectID, expectedVersion int64, set bson.M) (*Dashboard, error) {
	set["updated_at"] = time.Now()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated Dashboard
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "version": expectedVersion},
		bson.M{"$set": set, "$inc": bson.M{"version": 1}},
		opts,
	).Decode(&updated)
	if err == nil {
		return &updated, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	// No match: either the id is unknown or the version moved on.
	count, cerr := r.collection.CountDocuments(ctx, bson.M{"_id": id})
	if cerr != nil {
		return nil, cerr
	}
	if count == 0 {
		return nil, apperrors.ErrNotFound
	}
	return nil, apperrors.ErrVersionConflict
}

func (r *DashboardRepositoryImpl) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"is_active": false, "updated_at": time.Now()},
		"$inc": bson.M{"version": 1},
	})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *DashboardRepositoryImpl) ListOwned(ctx context.Context, ownerID primitive.ObjectID, activeOnly bool, page common_models.PageRequest) ([]Dashboard, int64, error) {
	filter := bson.M{"owner_id": ownerID}
	if activeOnly {
		filter["is_active"] = true
	}
	return r.find(ctx, filter, updatedDescIDAsc, page)
}

func (r *DashboardRepositoryImpl) ListPublic(ctx context.Context, page common_models.PageRequest) ([]Dashboard, int64, error) {
	filter := bson.M{"is_public": true, "is_active": true}
	return r.find(ctx, filter, updatedDescIDAsc, page)
}

func (r *DashboardRepositoryImpl) Search(ctx context.Context, term string, page common_models.PageRequest) ([]Dashboard, int64, error) {
	regex := primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
	filter := bson.M{
		"is_active": true,
		"$or": []bson.M{
			{"name": bson.M{"$regex": regex}},
			{"description": bson.M{"$regex": regex}},
		},
	}
	return r.find(ctx, filter, updatedDescIDAsc, page)
}

func (r *DashboardRepositoryImpl) ListPopular(ctx context.Context, page common_models.PageRequest) ([]Dashboard, int64, error) {
	filter := bson.M{"is_public": true, "is_active": true}
	sort := bson.D{{Key: "view_count", Value: -1}, {Key: "_id", Value: 1}}
	return r.find(ctx, filter, sort, page)
}

func (r *DashboardRepositoryImpl) find(ctx context.Context, filter bson.M, sort bson.D, page common_models.PageRequest) ([]Dashboard, int64, error) {
	page = page.Normalize()

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().SetSort(sort).SetSkip(page.Skip()).SetLimit(page.Limit)
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var dashboards []Dashboard
	if err = cursor.All(ctx, &dashboards); err != nil {
		return nil, 0, err
	}

	return dashboards, total, nil
}

func (r *DashboardRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "updated_at", Value: -1}}},
		{Keys: bson.D{{Key: "is_public", Value: 1}, {Key: "is_active", Value: 1}, {Key: "view_count", Value: -1}}},
		{Keys: bson.D{{Key: "name", Value: 1}}},
	})
	return err
}
