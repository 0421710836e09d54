// Package logs reads daemon log files on behalf of the CLI logs command.
package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"time"
)

// TailOptions controls a Tail call. A negative Offset means "start from
// the last Limit lines"; Follow waits up to Wait for new lines when the
// read would otherwise return nothing.
type TailOptions struct {
	Offset int64
	Limit  int
	Follow bool
	Wait   time.Duration
}

// TailResult carries the lines read and the offset to resume from.
type TailResult struct {
	Lines  []string
	Offset int64
}

const pollInterval = 200 * time.Millisecond

// Tail reads log lines from path according to opts. A missing file is not
// an error; it reads as empty at offset zero.
func Tail(ctx context.Context, path string, opts TailOptions) (TailResult, error) {
	if opts.Limit <= 0 {
		opts.Limit = 100
	}
	if opts.Wait < 0 {
		opts.Wait = 0
	}

	if opts.Offset < 0 {
		result, err := readLast(path, opts.Limit)
		if err != nil || len(result.Lines) > 0 || !opts.Follow {
			return result, err
		}
		opts.Offset = result.Offset
	}

	deadline := time.Now().Add(opts.Wait)
	for {
		result, err := readFrom(path, opts.Offset, opts.Limit)
		if err != nil {
			return result, err
		}
		if len(result.Lines) > 0 || !opts.Follow || !time.Now().Before(deadline) {
			return result, nil
		}
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

// readLast returns up to limit trailing lines and the end-of-file offset.
func readLast(path string, limit int) (TailResult, error) {
	file, size, err := openLog(path)
	if err != nil || file == nil {
		return TailResult{}, err
	}
	defer file.Close()

	ring := make([]string, 0, limit)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if len(ring) == limit {
			ring = ring[1:]
		}
		ring = append(ring, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return TailResult{}, fmt.Errorf("scan log file: %w", err)
	}
	return TailResult{Lines: ring, Offset: size}, nil
}

// readFrom returns up to limit lines starting at offset, along with the
// offset just past the last complete line consumed.
func readFrom(path string, offset int64, limit int) (TailResult, error) {
	file, size, err := openLog(path)
	if err != nil || file == nil {
		return TailResult{Offset: 0}, err
	}
	defer file.Close()

	// The file was rotated or truncated under us; start over.
	if offset > size {
		offset = 0
	}
	if _, err := file.Seek(offset, 0); err != nil {
		return TailResult{Offset: offset}, fmt.Errorf("seek log file: %w", err)
	}

	result := TailResult{Offset: offset}
	reader := bufio.NewReader(file)
	for len(result.Lines) < limit {
		line, err := reader.ReadString('\n')
		if err != nil {
			// A partial trailing line stays unread until it is complete.
			break
		}
		result.Offset += int64(len(line))
		result.Lines = append(result.Lines, trimNewline(line))
	}
	return result, nil
}

func openLog(path string) (*os.File, int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("stat log file: %w", err)
	}
	if info.IsDir() {
		return nil, 0, fmt.Errorf("log path %q is a directory", path)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open log file: %w", err)
	}
	return file, info.Size(), nil
}

func trimNewline(line string) string {
	for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
		line = line[:len(line)-1]
	}
	return line
}
