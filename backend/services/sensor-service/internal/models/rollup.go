package models

import "time"

// HourlyBucket holds per-channel means of one hour of readings. A nil channel had no
// contributing readings in that hour.
type HourlyBucket struct {
	Label       string    `json:"hourBucketLabel"`
	Temperature *float64  `json:"temperature"`
	Humidity    *float64  `json:"humidity"`
	MQ135       *float64  `json:"mq135"`
	MQ2         *float64  `json:"mq2"`
	Count       int       `json:"count"`
	Hour        time.Time `json:"-"`
}
