package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

// LogRow is one calibration sample in the tabular log.
type LogRow struct {
	Timestamp  time.Time
	FrameIndex int
	GazeX      float64
	GazeY      float64
	GazeZ      float64
	Yaw        float64
	Pitch      float64
	Roll       float64
	// Target position in millimetres; SetZ is always 0.
	SetX float64
	SetY float64
	SetZ float64
}

// wTransGColumns is the number of flattened world-transform placeholder
// columns the log carries for compatibility.
const wTransGColumns = 16

// calibrationLogHeader returns the fixed column order of the calibration
// log. Downstream consumers index by position as well as by name, so the
// order is part of the contract. The eye-position, box, and WTransG columns
// are placeholders kept for compatibility with earlier producers.
func calibrationLogHeader() []string {
	header := []string{
		"Unnamed: 0",
		"Timestamp",
		"idx",
		"gaze_x",
		"gaze_y",
		"gaze_z",
		"REyePos_x",
		"REyePos_y",
		"LEyePos_x",
		"LEyePos_y",
		"yaw",
		"pitch",
		"roll",
		"HeadBox_xmin",
		"HeadBox_ymin",
		"RightEyeBox_xmin",
		"RightEyeBox_ymin",
		"LeftEyeBox_xmin",
		"LeftEyeBox_ymin",
		"ROpenClose",
		"LOpenClose",
		"set_x",
		"set_y",
		"set_z",
	}
	for i := 0; i < wTransGColumns; i++ {
		if i == 0 {
			header = append(header, "WTransG")
		} else {
			header = append(header, fmt.Sprintf("WTransG.%d", i))
		}
	}
	return append(header, "candidate_id")
}

// WriteCalibrationLog writes the calibration log for one candidate. One row
// per calibration sample, trailing identifier column.
func WriteCalibrationLog(w io.Writer, rows []LogRow, candidateID string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(calibrationLogHeader()); err != nil {
		return err
	}

	for i, row := range rows {
		record := []string{
			strconv.Itoa(i),
			row.Timestamp.Format(time.RFC3339Nano),
			strconv.Itoa(row.FrameIndex),
			formatFloat(row.GazeX),
			formatFloat(row.GazeY),
			formatFloat(row.GazeZ),
			"0", // REyePos_x
			"0", // REyePos_y
			"0", // LEyePos_x
			"0", // LEyePos_y
			formatFloat(row.Yaw),
			formatFloat(row.Pitch),
			formatFloat(row.Roll),
			"0", // HeadBox_xmin
			"0", // HeadBox_ymin
			"0", // RightEyeBox_xmin
			"0", // RightEyeBox_ymin
			"0", // LeftEyeBox_xmin
			"0", // LeftEyeBox_ymin
			"1", // ROpenClose
			"1", // LOpenClose
			formatFloat(row.SetX),
			formatFloat(row.SetY),
			formatFloat(row.SetZ),
		}
		for j := 0; j < wTransGColumns; j++ {
			record = append(record, "0")
		}
		record = append(record, candidateID)

		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
