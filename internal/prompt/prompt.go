// Package prompt collects run parameters interactively.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"grid-backtest/internal/model"
)

// Source asks for each parameter in turn on out and reads answers from in.
type Source struct {
	in  *bufio.Reader
	out io.Writer
}

func New(in io.Reader, out io.Writer) *Source {
	return &Source{in: bufio.NewReader(in), out: out}
}

// Params prompts for coin, dates, bounds, grid count, grid mode and an
// optional offline file, in that order. Blank answers take the defaults in
// model; bounds and count have none.
func (s *Source) Params() (model.Params, error) {
	var p model.Params
	var err error

	if p.Coin, err = s.ask(fmt.Sprintf("CoinGecko coin id (e.g. %s): ", model.DefaultCoin), model.DefaultCoin); err != nil {
		return p, err
	}
	if p.StartDate, err = s.ask("Start date (YYYY-MM-DD): ", model.DefaultStartDate); err != nil {
		return p, err
	}
	if p.EndDate, err = s.ask("End date (YYYY-MM-DD): ", model.DefaultEndDate); err != nil {
		return p, err
	}
	if p.Lower, err = s.askFloat("Lower price bound: "); err != nil {
		return p, err
	}
	if p.Upper, err = s.askFloat("Upper price bound: "); err != nil {
		return p, err
	}
	if p.GridCount, err = s.askInt("Grid count: "); err != nil {
		return p, err
	}
	mode, err := s.ask("Grid mode (arith/geom): ", model.DefaultGridMode)
	if err != nil {
		return p, err
	}
	p.GridMode = strings.ToLower(mode)
	if p.OfflinePath, err = s.askOptional("Offline CSV path (Enter to download): "); err != nil {
		return p, err
	}
	return p, nil
}

func (s *Source) ask(label, def string) (string, error) {
	v, err := s.readLine(label)
	if err != nil {
		return "", err
	}
	if v == "" {
		return def, nil
	}
	return v, nil
}

func (s *Source) askOptional(label string) (string, error) {
	v, err := s.readLine(label)
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return "", nil
	}
	return v, err
}

func (s *Source) askFloat(label string) (float64, error) {
	v, err := s.readLine(label)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s %q is not a number", strings.TrimSuffix(label, ": "), v)
	}
	return f, nil
}

func (s *Source) askInt(label string) (int, error) {
	v, err := s.readLine(label)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s %q is not an integer", strings.TrimSuffix(label, ": "), v)
	}
	return n, nil
}

// readLine returns io.ErrUnexpectedEOF when input ends before an answer.
func (s *Source) readLine(label string) (string, error) {
	if _, err := io.WriteString(s.out, label); err != nil {
		return "", err
	}
	line, err := s.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", fmt.Errorf("%s: %w", strings.TrimSpace(label), io.ErrUnexpectedEOF)
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}
