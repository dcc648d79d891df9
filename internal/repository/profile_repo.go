package repository

import (
	"context"

	"github.com/SamSnead85/622-sub012/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ProfileRepo reads account profiles from the platform's user database.
// The game side never writes here; accounts are owned elsewhere.
type ProfileRepo interface {
	GetByID(ctx context.Context, id string) (*model.Profile, error)
}

type profileRepo struct {
	collection *mongo.Collection
}

// NewProfileRepo creates a profile repository over the given database.
func NewProfileRepo(db *mongo.Database) ProfileRepo {
	return &profileRepo{
		collection: db.Collection("users"),
	}
}

func (r *profileRepo) GetByID(ctx context.Context, id string) (*model.Profile, error) {
	var profile model.Profile
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&profile)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}
