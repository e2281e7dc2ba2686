// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"bufio"
	"io"
	"strings"

	nmea "github.com/adrianmo/go-nmea"
	serial "github.com/jacobsa/go-serial/serial"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/relabs-tech/tilt/internal/config"
	"github.com/relabs-tech/tilt/internal/imu"
)

// SentenceReader decodes $PTILT sentences from a line oriented stream.
// Blank lines, partial or corrupt sentences and other NMEA sentence types
// are skipped.
type SentenceReader struct {
	scanner *bufio.Scanner
	parser  *nmea.SentenceParser
	logger  *zap.SugaredLogger

	skipped int
}

// NewSentenceReader returns a reader decoding samples from r.
func NewSentenceReader(r io.Reader, logger *zap.SugaredLogger) *SentenceReader {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &SentenceReader{
		scanner: bufio.NewScanner(r),
		parser:  NewSentenceParser(),
		logger:  logger,
	}
}

// Next implements imu.Source. It returns io.EOF once the stream is
// exhausted.
func (r *SentenceReader) Next() (imu.Sample, error) {
	for r.scanner.Scan() {
		line := strings.TrimSpace(r.scanner.Text())
		if line == "" || !strings.HasPrefix(line, "$") {
			continue
		}

		sentence, err := r.parser.Parse(line)
		if err != nil {
			r.skipped++
			r.logger.Debugw("skipping sentence", "line", line, "error", err)
			continue
		}
		m, ok := sentence.(TILT)
		if !ok {
			continue
		}
		return m.Sample(), nil
	}
	if err := r.scanner.Err(); err != nil {
		return imu.Sample{}, errors.Wrap(err, "read sentence")
	}
	return imu.Sample{}, io.EOF
}

// Skipped returns how many sentences failed to parse so far.
func (r *SentenceReader) Skipped() int {
	return r.skipped
}

// SerialSource reads $PTILT sentences from a serial port.
type SerialSource struct {
	*SentenceReader
	port io.ReadWriteCloser
}

// OpenSerialSource opens the configured serial port at 8N1.
func OpenSerialSource(cfg *config.Config, logger *zap.SugaredLogger) (*SerialSource, error) {
	opts := serial.OpenOptions{
		PortName:              cfg.SerialPort,
		BaudRate:              uint(cfg.SerialBaudRate),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}
	port, err := serial.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "open serial port %s", cfg.SerialPort)
	}
	logger.Infow("serial port opened", "port", opts.PortName, "baud", opts.BaudRate)
	return &SerialSource{
		SentenceReader: NewSentenceReader(port, logger),
		port:           port,
	}, nil
}

// Close closes the serial port.
func (s *SerialSource) Close() error {
	return s.port.Close()
}
