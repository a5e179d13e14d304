package services

import (
	"context"
	"fmt"
	"math"

	"bootcamp-api/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CostAggregator keeps Bootcamp.averageCost equal to the mean course tuition,
// rounded up to the nearest 10.
type CostAggregator struct {
	courses   store.Collection
	bootcamps store.Collection
}

func NewCostAggregator(courses, bootcamps store.Collection) *CostAggregator {
	return &CostAggregator{courses: courses, bootcamps: bootcamps}
}

// Recompute reads every course of the bootcamp and writes the new average. When no
// course remains the bootcamp is left untouched.
func (a *CostAggregator) Recompute(ctx context.Context, bootcampID primitive.ObjectID) error {
	avg, n, err := a.courses.Average(ctx, bson.M{"bootcamp": bootcampID}, "tuition")
	if err != nil {
		return fmt.Errorf("average tuition for bootcamp %s: %w", bootcampID.Hex(), err)
	}
	if n == 0 {
		return nil
	}

	err = a.bootcamps.Update(ctx, store.ByID(bootcampID), bson.M{"averageCost": RoundUpToTen(avg)}, nil)
	if err != nil {
		return fmt.Errorf("update average cost of bootcamp %s: %w", bootcampID.Hex(), err)
	}
	return nil
}

// RoundUpToTen rounds v up to the next multiple of 10.
func RoundUpToTen(v float64) float64 {
	return math.Ceil(v/10) * 10
}
