package services

import (
	"bootcamp-api/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func parseID(raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, utils.CastFailed(raw)
	}
	return id, nil
}
