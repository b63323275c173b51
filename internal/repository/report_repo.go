package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"roadreport/internal/model"
)

// ReportRepo handles MongoDB operations for the submitted-report archive.
type ReportRepo interface {
	Create(ctx context.Context, report *model.SubmittedReport) error
	GetByID(ctx context.Context, id string) (*model.SubmittedReport, error)
	List(ctx context.Context, mode model.Mode, limit int64) ([]*model.SubmittedReport, error)
}

type reportRepo struct {
	collection *mongo.Collection
}

// NewReportRepo creates a new report repository.
func NewReportRepo(db *mongo.Database) ReportRepo {
	return &reportRepo{
		collection: db.Collection("submitted_reports"),
	}
}

func (r *reportRepo) Create(ctx context.Context, report *model.SubmittedReport) error {
	if report.SubmittedAt.IsZero() {
		report.SubmittedAt = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, report)
	return err
}

func (r *reportRepo) GetByID(ctx context.Context, id string) (*model.SubmittedReport, error) {
	var report model.SubmittedReport
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&report)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *reportRepo) List(ctx context.Context, mode model.Mode, limit int64) ([]*model.SubmittedReport, error) {
	filter := bson.M{}
	if mode != "" {
		filter["mode"] = mode
	}
	opts := options.Find().
		SetSort(bson.M{"submittedAt": -1}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var reports []*model.SubmittedReport
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}
