package gaze

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/nivedita/drishti/internal/calib"
)

// PLGazeEstimator implements Estimator using the pl-gaze Python model in a
// subprocess. Frames go out as length-prefixed JPEG bytes; results come back
// as one JSON line per frame.
type PLGazeEstimator struct {
	config    Config
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	stdout    *bufio.Reader
	mu        sync.Mutex
	started   bool
	idleTimer *time.Timer
}

// NewPLGazeEstimator creates the subprocess back-end. The Python process is
// started lazily on first estimation, but the service script must already be
// locatable or construction fails with UnsupportedModeError.
func NewPLGazeEstimator(config Config) (*PLGazeEstimator, error) {
	if findGazeScript(config.ScriptPath) == "" {
		return nil, &UnsupportedModeError{Mode: ModePLGaze, Reason: "gaze_service.py not found"}
	}
	return &PLGazeEstimator{config: config}, nil
}

type jsonEstimate struct {
	Detected bool       `json:"detected"`
	Gaze     [3]float64 `json:"gaze"`
	HeadPose [3]float64 `json:"head_pose_ypr"`
}

// Estimate sends a frame to the subprocess and parses its response.
func (e *PLGazeEstimator) Estimate(frame *gocv.Mat) (Estimate, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ensureStarted(); err != nil {
		return Estimate{}, false, err
	}

	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return Estimate{}, false, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()
	data := buf.GetBytes()

	// Write length (4 bytes big-endian) + data
	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(len(data)))
	if _, err := e.stdin.Write(length); err != nil {
		return Estimate{}, false, fmt.Errorf("write length: %w", err)
	}
	if _, err := e.stdin.Write(data); err != nil {
		return Estimate{}, false, fmt.Errorf("write data: %w", err)
	}

	line, err := e.stdout.ReadString('\n')
	if err != nil {
		return Estimate{}, false, fmt.Errorf("read response: %w", err)
	}

	var response jsonEstimate
	if err := json.Unmarshal([]byte(line), &response); err != nil {
		return Estimate{}, false, fmt.Errorf("parse response: %w", err)
	}

	e.resetIdleTimer()

	if !response.Detected {
		return Estimate{}, false, nil
	}
	return Estimate{
		Gaze:     calib.Vec3{X: response.Gaze[0], Y: response.Gaze[1], Z: response.Gaze[2]},
		HeadPose: calib.Vec3{X: response.HeadPose[0], Y: response.HeadPose[1], Z: response.HeadPose[2]},
	}, true, nil
}

// Close shuts down the Python process.
func (e *PLGazeEstimator) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.shutdown()
}

func (e *PLGazeEstimator) ensureStarted() error {
	if e.started {
		return nil
	}

	scriptPath := findGazeScript(e.config.ScriptPath)
	if scriptPath == "" {
		return &UnsupportedModeError{Mode: ModePLGaze, Reason: "gaze_service.py not found"}
	}

	pythonPath := findVenvPython()
	if pythonPath == "" {
		pythonPath = "python3"
	}

	e.cmd = exec.Command(pythonPath, scriptPath)

	stdin, err := e.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}
	stdout, err := e.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}
	e.cmd.Stderr = os.Stderr

	if err := e.cmd.Start(); err != nil {
		return fmt.Errorf("start gaze service: %w", err)
	}

	e.stdin = stdin
	e.stdout = bufio.NewReader(stdout)
	e.started = true
	return nil
}

func (e *PLGazeEstimator) shutdown() error {
	if !e.started {
		return nil
	}

	if e.idleTimer != nil {
		e.idleTimer.Stop()
		e.idleTimer = nil
	}
	if e.stdin != nil {
		e.stdin.Close()
	}

	err := e.cmd.Wait()
	e.started = false
	e.cmd = nil
	e.stdin = nil
	e.stdout = nil
	return err
}

func (e *PLGazeEstimator) resetIdleTimer() {
	if e.idleTimer != nil {
		e.idleTimer.Stop()
	}
	e.idleTimer = time.AfterFunc(30*time.Second, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.shutdown()
	})
}

func findGazeScript(override string) string {
	if override != "" {
		if _, err := os.Stat(override); err == nil {
			return override
		}
		return ""
	}

	execPath, err := os.Executable()
	var execDir string
	if err == nil {
		execDir = filepath.Dir(execPath)
	}

	candidates := []string{
		"scripts/gaze_service.py",
		"../scripts/gaze_service.py",
		filepath.Join(execDir, "scripts/gaze_service.py"),
		filepath.Join(os.Getenv("HOME"), ".drishti/scripts/gaze_service.py"),
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			if absPath, err := filepath.Abs(path); err == nil {
				return absPath
			}
			return path
		}
	}
	return ""
}

// findVenvPython looks for a Python interpreter in a virtual environment
// next to the executable.
func findVenvPython() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}
	execDir := filepath.Dir(execPath)

	candidates := []string{
		"venv/bin/python",
		"../venv/bin/python",
		filepath.Join(execDir, "venv/bin/python"),
		filepath.Join(os.Getenv("HOME"), ".drishti/venv/bin/python"),
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
