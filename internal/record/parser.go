package record

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"lsforce/internal/errors"
)

// startLayout matches the gauge's backslash-delimited timestamp,
// e.g. `01\07\24 13:45:02`.
const startLayout = `02\01\06 15:04:05`

// headerLines is the fixed number of header lines before the samples.
const headerLines = 13

// ParseFile reads one gauge export from disk. The returned error wraps
// every parse failure with the PARSE_FAILED code; callers at the sensor
// boundary log it and skip the file.
func ParseFile(path string) (*RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.CodeParseFailed, fmt.Sprintf("open record file %s", path), err)
	}
	defer f.Close()

	return Parse(f, path)
}

// Parse reads one gauge export from r. The name is used in error messages
// and log records only.
func Parse(r io.Reader, name string) (*RawRecord, error) {
	scanner := bufio.NewScanner(r)

	header := make([]string, 0, headerLines)
	for len(header) < headerLines && scanner.Scan() {
		header = append(header, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(errors.CodeParseFailed, fmt.Sprintf("read header of %s", name), err)
	}
	if len(header) < headerLines {
		return nil, errors.Newf(errors.CodeParseFailed,
			"record %s: incomplete header: expected %d lines, got %d", name, headerLines, len(header))
	}

	rec := &RawRecord{SensorID: header[0]}

	start, err := time.Parse(startLayout, header[1]+" "+header[2])
	if err != nil {
		return nil, errors.Wrap(errors.CodeParseFailed, fmt.Sprintf("record %s: parse start timestamp", name), err)
	}
	rec.Start = start

	if rec.MeasurementID, err = headerInt(header[3], "measurement id"); err != nil {
		return nil, wrapHeaderErr(name, err)
	}
	if rec.Unit, err = headerValue(header[4], "unit"); err != nil {
		return nil, wrapHeaderErr(name, err)
	}
	if rec.Mode, err = headerValue(header[5], "mode"); err != nil {
		return nil, wrapHeaderErr(name, err)
	}
	if rec.RelZero, err = headerValue(header[6], "rel zero"); err != nil {
		return nil, wrapHeaderErr(name, err)
	}
	if rec.Speed, err = headerInt(header[7], "speed"); err != nil {
		return nil, wrapHeaderErr(name, err)
	}
	if rec.Trig, err = headerFloat(header[8], "trig"); err != nil {
		return nil, wrapHeaderErr(name, err)
	}
	if rec.Stop, err = headerFloat(header[9], "stop"); err != nil {
		return nil, wrapHeaderErr(name, err)
	}
	if rec.Pre, err = headerInt(header[10], "pre"); err != nil {
		return nil, wrapHeaderErr(name, err)
	}
	if rec.Catch, err = headerInt(header[11], "catch"); err != nil {
		return nil, wrapHeaderErr(name, err)
	}
	if rec.Total, err = headerInt(header[12], "total"); err != nil {
		return nil, wrapHeaderErr(name, err)
	}

	line := headerLines
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(strings.TrimRight(scanner.Text(), "\r"))
		if text == "" {
			continue
		}
		sample, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, errors.Wrap(errors.CodeParseFailed,
				fmt.Sprintf("record %s: parse sample at line %d", name, line+1), err)
		}
		rec.Force = append(rec.Force, sample)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(errors.CodeParseFailed, fmt.Sprintf("read samples of %s", name), err)
	}

	if len(rec.Force) == 0 {
		return nil, errors.Newf(errors.CodeParseFailed, "record %s: no force samples", name)
	}

	if rec.SampleCountMismatch() {
		slog.Warn("declared sample count differs from parsed samples",
			slog.String("record", name),
			slog.Int("declared_total", rec.Total),
			slog.Int("parsed", len(rec.Force)))
	}

	return rec, nil
}

// headerValue extracts the value of a `key=value` header line.
func headerValue(line, field string) (string, error) {
	_, value, found := strings.Cut(line, "=")
	if !found {
		return "", fmt.Errorf("header field %q: missing '=' in %q", field, line)
	}
	return strings.TrimSpace(value), nil
}

func headerInt(line, field string) (int, error) {
	value, err := headerValue(line, field)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("header field %q: %w", field, err)
	}
	return n, nil
}

func headerFloat(line, field string) (float64, error) {
	value, err := headerValue(line, field)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("header field %q: %w", field, err)
	}
	return f, nil
}

func wrapHeaderErr(name string, err error) error {
	return errors.Wrap(errors.CodeParseFailed, fmt.Sprintf("record %s: malformed header", name), err)
}
