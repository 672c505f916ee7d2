package core

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/niladic/csvexec/core/config"
)

// ErrInvalidOutput is the error resulting if a command writes standard
// output that is not valid UTF-8.
var ErrInvalidOutput = errors.New("command output is not valid UTF-8")

// Pipeline runs the command template once per input record, strictly in
// input order, and appends each captured output as a new trailing field.
//
// A Pipeline is immutable after construction; only the streams passed to
// Run are consumed.
type Pipeline struct {
	template      CommandTemplate
	pattern       *Pattern
	exec          Executor
	newColumnName string
	noHeader      bool
	delimiter     byte
	quote         byte
}

// NewPipeline validates cfg and builds a ready-to-run pipeline. Every
// configuration error surfaces here, before any input is read.
func NewPipeline(cfg *config.Config, exec Executor) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	delimiter, err := cfg.DelimiterByte()
	if err != nil {
		return nil, err
	}
	quote, err := cfg.QuoteByte()
	if err != nil {
		return nil, err
	}
	pattern, err := CompilePattern(cfg.ArgRegex)
	if err != nil {
		return nil, err
	}
	template, err := ParseCommandTemplate(cfg.Exec)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		template:      template,
		pattern:       pattern,
		exec:          exec,
		newColumnName: cfg.NewColumnName,
		noHeader:      cfg.NoHeader,
		delimiter:     delimiter,
		quote:         quote,
	}, nil
}

// Run streams records from r to w. There is no recovery and no retry: the
// first failure aborts the run, leaving any rows already written in place.
func (p *Pipeline) Run(r io.Reader, w io.Writer) error {
	reader := csv.NewReader(newQuoteReader(r, p.quote))
	reader.Comma = rune(p.delimiter)
	// Record widths are expected constant, but that's the input's promise
	// to keep; out-of-range placeholders already resolve to "".
	reader.FieldsPerRecord = -1

	writer := csv.NewWriter(newQuoteWriter(w, p.quote))
	writer.Comma = rune(p.delimiter)
	// Flush on every return path: rows written before a mid-stream failure
	// must reach the sink.
	defer writer.Flush()

	if !p.noHeader {
		header, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read header: %w", err)
		}
		p.unswapRecord(header)
		if err := p.write(writer, append(header, p.newColumnName)); err != nil {
			return err
		}
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read record: %w", err)
		}
		p.unswapRecord(record)

		result, err := p.process(record)
		if err != nil {
			return err
		}
		if err := p.write(writer, append(record, result)); err != nil {
			return err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// process materializes the argument vector for one record, invokes the
// command and returns its trimmed standard output.
func (p *Pipeline) process(record []string) (string, error) {
	program, args, err := p.template.Materialize(p.pattern, record)
	if err != nil {
		return "", err
	}

	out, err := p.exec.Invoke(program, args)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(out) {
		return "", fmt.Errorf("command %s: %w", program, ErrInvalidOutput)
	}
	return strings.TrimSpace(string(out)), nil
}

func (p *Pipeline) write(writer *csv.Writer, record []string) error {
	if p.quote != '"' {
		for i, field := range record {
			record[i] = swapString(field, p.quote, '"')
		}
	}
	if err := writer.Write(record); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	return nil
}

// unswapRecord undoes the quote translation inside field values parsed from
// a swapped stream. No-op for the standard quote.
func (p *Pipeline) unswapRecord(record []string) {
	if p.quote == '"' {
		return
	}
	for i, field := range record {
		record[i] = swapString(field, p.quote, '"')
	}
}
