package widget

import (
	"context"
	"time"

	"go-opsboard/internal/apperrors"
	"go-opsboard/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type WidgetRepository interface {
	Create(ctx context.Context, widget *Widget) error
	Get(ctx context.Context, id primitive.ObjectID) (*Widget, error)
	// ApplyPatch performs a version-checked update, mirroring the dashboard
	// repository's optimistic concurrency scheme.
	ApplyPatch(ctx context.Context, id primitive.ObjectID, expectedVersion int64, set bson.M) (*Widget, error)
	Deactivate(ctx context.Context, id primitive.ObjectID) error
	// DeactivateByDashboard soft-deletes every widget under a dashboard.
	DeactivateByDashboard(ctx context.Context, dashboardID primitive.ObjectID) error
	// ListByDashboard returns widgets in grid reading order: y then x ascending.
	ListByDashboard(ctx context.Context, dashboardID primitive.ObjectID, activeVisibleOnly bool) ([]Widget, error)
	// ListActive returns every active widget, for the refresh sweeper.
	ListActive(ctx context.Context) ([]Widget, error)
	// MarkRefreshed stamps last_refreshed_at and nothing else.
	MarkRefreshed(ctx context.Context, id primitive.ObjectID, at time.Time) error
	EnsureIndexes(ctx context.Context) error
}

type WidgetRepositoryImpl struct {
	collection *mongo.Collection
}

func NewWidgetRepository(db *database.MongodbDB) WidgetRepository {
	return &WidgetRepositoryImpl{
		collection: db.DB.Collection("widgets"),
	}
}

func (r *WidgetRepositoryImpl) Create(ctx context.Context, widget *Widget) error {
	if widget.ID.IsZero() {
		widget.ID = primitive.NewObjectID()
	}
	now := time.Now()
	widget.CreatedAt = now
	widget.UpdatedAt = now
	widget.Version = 1
	widget.IsActive = true
	widget.IsVisible = true

	_, err := r.collection.InsertOne(ctx, widget)
	return err
}

func (r *WidgetRepositoryImpl) Get(ctx context.Context, id primitive.ObjectID) (*Widget, error) {
	var widget Widget
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&widget)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &widget, nil
}

func (r *WidgetRepositoryImpl) ApplyPatch(ctx context.Context, id primitive.ObjectID, expectedVersion int64, set bson.M) (*Widget, error) {
	set["updated_at"] = time.Now()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated Widget
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

	count, cerr := r.collection.CountDocuments(ctx, bson.M{"_id": id})
	if cerr != nil {
		return nil, cerr
	}
	if count == 0 {
		return nil, apperrors.ErrNotFound
	}
	return nil, apperrors.ErrVersionConflict
}

func (r *WidgetRepositoryImpl) Deactivate(ctx context.Context, id primitive.ObjectID) error {
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

func (r *WidgetRepositoryImpl) DeactivateByDashboard(ctx context.Context, dashboardID primitive.ObjectID) error {
	_, err := r.collection.UpdateMany(ctx,
		bson.M{"dashboard_id": dashboardID, "is_active": true},
		bson.M{
			"$set": bson.M{"is_active": false, "updated_at": time.Now()},
			"$inc": bson.M{"version": 1},
		},
	)
	return err
}

func (r *WidgetRepositoryImpl) ListByDashboard(ctx context.Context, dashboardID primitive.ObjectID, activeVisibleOnly bool) ([]Widget, error) {
	filter := bson.M{"dashboard_id": dashboardID}
	if activeVisibleOnly {
		filter["is_active"] = true
		filter["is_visible"] = true
	}

	// Grid reading order.
	opts := options.Find().SetSort(bson.D{
		{Key: "position.y", Value: 1},
		{Key: "position.x", Value: 1},
	})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var widgets []Widget
	if err = cursor.All(ctx, &widgets); err != nil {
		return nil, err
	}
	return widgets, nil
}

func (r *WidgetRepositoryImpl) ListActive(ctx context.Context) ([]Widget, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"is_active": true})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var widgets []Widget
	if err = cursor.All(ctx, &widgets); err != nil {
		return nil, err
	}
	return widgets, nil
}

func (r *WidgetRepositoryImpl) MarkRefreshed(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"last_refreshed_at": at},
	})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *WidgetRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "dashboard_id", Value: 1}, {Key: "position.y", Value: 1}, {Key: "position.x", Value: 1}}},
		{Keys: bson.D{{Key: "is_active", Value: 1}}},
	})
	return err
}
