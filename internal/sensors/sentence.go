// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	nmea "github.com/adrianmo/go-nmea"
	"github.com/pkg/errors"

	"github.com/relabs-tech/tilt/internal/imu"
	"github.com/relabs-tech/tilt/internal/spatial"
)

// TypeTILT is the sentence type of the proprietary sample sentence:
//
//	$PTILT,<unix ms>,<ax>,<ay>,<az>,<gx>,<gy>,<gz>*<checksum>
//
// Accelerometer fields are in g, gyro fields in rad/s.
const TypeTILT = "TILT"

// TILT is a parsed $PTILT sentence.
type TILT struct {
	nmea.BaseSentence
	TimeMillis int64
	Accel      spatial.Vec3
	Gyro       spatial.Vec3
}

// Sample returns the sentence as an imu.Sample.
func (t TILT) Sample() imu.Sample {
	return imu.Sample{
		Time:  time.UnixMilli(t.TimeMillis),
		Accel: t.Accel,
		Gyro:  t.Gyro,
	}
}

func newTILT(s nmea.BaseSentence) (nmea.Sentence, error) {
	if len(s.Fields) != 7 {
		return nil, errors.Errorf("nmea: PTILT expects 7 fields, got %d", len(s.Fields))
	}
	p := nmea.NewParser(s)
	m := TILT{
		BaseSentence: s,
		TimeMillis:   p.Int64(0, "time"),
		Accel:        spatial.NewVec3(p.Float64(1, "ax"), p.Float64(2, "ay"), p.Float64(3, "az")),
		Gyro:         spatial.NewVec3(p.Float64(4, "gx"), p.Float64(5, "gy"), p.Float64(6, "gz")),
	}
	return m, p.Err()
}

// NewSentenceParser returns an NMEA parser that also understands $PTILT.
func NewSentenceParser() *nmea.SentenceParser {
	return &nmea.SentenceParser{
		CustomParsers: map[string]nmea.ParserFunc{
			TypeTILT: newTILT,
		},
	}
}

// EncodeSentence formats s as a $PTILT sentence without line terminator.
func EncodeSentence(s imu.Sample) string {
	fields := []string{
		"P" + TypeTILT,
		strconv.FormatInt(s.Time.UnixMilli(), 10),
		formatField(s.Accel.X), formatField(s.Accel.Y), formatField(s.Accel.Z),
		formatField(s.Gyro.X), formatField(s.Gyro.Y), formatField(s.Gyro.Z),
	}
	body := strings.Join(fields, ",")
	return fmt.Sprintf("$%s*%s", body, nmea.Checksum(body))
}

func formatField(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
