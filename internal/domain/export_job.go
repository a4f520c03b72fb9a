package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExportType names a rendered document format.
type ExportType string

const (
	ExportJSON      ExportType = "json"
	ExportFITStub   ExportType = "fit"
	ExportFITBinary ExportType = "fit_binary"
)

func (t ExportType) Valid() bool {
	return t == ExportJSON || t == ExportFITStub || t == ExportFITBinary
}

// ExportRange is the calendar window an export covers, counted from today.
type ExportRange string

const (
	RangeWeek  ExportRange = "week"
	RangeMonth ExportRange = "month"
)

// Days returns how many days past the start date the range reaches.
func (r ExportRange) Days() int {
	if r == RangeMonth {
		return 30
	}
	return 7
}

// ExportJobStatus for export job records.
type ExportJobStatus string

const (
	ExportDone   ExportJobStatus = "done"
	ExportFailed ExportJobStatus = "failed"
)

// ExportJob records a rendered export. When object storage is enabled the
// document itself lives in the bucket under ObjectKey.
type ExportJob struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AthleteID   primitive.ObjectID `bson:"athleteId" json:"athleteId"`
	PlanID      primitive.ObjectID `bson:"planId" json:"planId"`
	RangeStart  string             `bson:"rangeStart" json:"rangeStart"`
	RangeEnd    string             `bson:"rangeEnd" json:"rangeEnd"`
	ExportType  ExportType         `bson:"exportType" json:"exportType"`
	Status      ExportJobStatus    `bson:"status" json:"status"`
	FileName    string             `bson:"fileName" json:"fileName"`
	ContentType string             `bson:"contentType" json:"contentType"`
	Size        int64              `bson:"size" json:"size"`
	ObjectKey   string             `bson:"objectKey,omitempty" json:"-"` // internal use
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}
