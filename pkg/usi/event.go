// Copyright © 2024 Rak Laptudirm <rak@laptudirm.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package usi

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// EventKind is the type of a line sent by an engine.
type EventKind int

const (
	Unknown EventKind = iota
	Id
	UsiOk
	ReadyOk
	OptionLine
	BestMove
	Resign
	DeclareWin
	InfoLine
)

func (kind EventKind) String() string {
	switch kind {
	case Id:
		return "id"
	case UsiOk:
		return "usiok"
	case ReadyOk:
		return "readyok"
	case OptionLine:
		return "option"
	case BestMove:
		return "bestmove"
	case Resign:
		return "resign"
	case DeclareWin:
		return "win"
	case InfoLine:
		return "info"
	default:
		return "unknown"
	}
}

// Event is a decoded engine line. Only the fields relevant to its Kind
// are set.
type Event struct {
	Kind EventKind
	Line string

	// id
	Name   string
	Author string

	// bestmove
	Move   string
	Ponder string

	Option Option
	Info   Info
}

// Option is an option an engine advertises during the handshake.
type Option struct {
	Name    string   `yaml:"name" json:"name"`
	Type    string   `yaml:"type" json:"type"`
	Default string   `yaml:"default,omitempty" json:"default,omitempty"`
	Min     *int     `yaml:"min,omitempty" json:"min,omitempty"`
	Max     *int     `yaml:"max,omitempty" json:"max,omitempty"`
	Vars    []string `yaml:"vars,omitempty" json:"vars,omitempty"`
}

// Info holds the search statistics of an info line.
type Info struct {
	Depth    int
	SelDepth int
	Nodes    int64
	NPS      int64
	Time     int
	Score    int
	Mate     bool
	PV       []string
	String   string
}

var ErrProtocolViolation = errors.New("usi: protocol violation")

// Decode parses a single line of engine output. Lines the codec does not
// understand decode to an Unknown event, not an error; only malformed
// lines of a known kind are errors.
func Decode(line string) (Event, error) {
	line = strings.TrimSpace(line)
	event := Event{Kind: Unknown, Line: line}

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return event, nil
	}

	switch fields[0] {
	case "usiok":
		event.Kind = UsiOk
	case "readyok":
		event.Kind = ReadyOk

	case "id":
		event.Kind = Id
		if len(fields) < 3 {
			return event, nil
		}

		value := strings.Join(fields[2:], " ")
		switch fields[1] {
		case "name":
			event.Name = value
		case "author":
			event.Author = value
		}

	case "bestmove":
		if len(fields) < 2 {
			return event, fmt.Errorf("%w: %q: missing move", ErrProtocolViolation, line)
		}

		switch fields[1] {
		case "resign":
			event.Kind = Resign
		case "win":
			event.Kind = DeclareWin
		default:
			event.Kind = BestMove
			event.Move = fields[1]
		}

		if len(fields) >= 4 && fields[2] == "ponder" {
			event.Ponder = fields[3]
		}

	case "option":
		option, err := parseOption(fields[1:])
		if err != nil {
			return event, fmt.Errorf("%w: %q: %v", ErrProtocolViolation, line, err)
		}

		event.Kind = OptionLine
		event.Option = option

	case "info":
		event.Kind = InfoLine
		event.Info = parseInfo(fields[1:])
	}

	return event, nil
}

func parseOption(fields []string) (Option, error) {
	var option Option

	// names and string values may contain spaces, so they run up to
	// the next keyword
	join := func(dst *string, field string) {
		if *dst != "" {
			*dst += " "
		}
		*dst += field
	}

	var key string
	for _, field := range fields {
		switch field {
		case "name", "type", "default", "min", "max", "var":
			key = field
			if key == "var" {
				option.Vars = append(option.Vars, "")
			}
			continue
		}

		switch key {
		case "name":
			join(&option.Name, field)
		case "type":
			option.Type = field
		case "default":
			join(&option.Default, field)
		case "min", "max":
			n, err := strconv.Atoi(field)
			if err != nil {
				return option, fmt.Errorf("bad %s %q", key, field)
			}

			if key == "min" {
				option.Min = &n
			} else {
				option.Max = &n
			}
		case "var":
			join(&option.Vars[len(option.Vars)-1], field)
		}
	}

	if option.Name == "" || option.Type == "" {
		return option, errors.New("option without name or type")
	}

	return option, nil
}

func parseInfo(fields []string) Info {
	var info Info

	for i := 0; i < len(fields); i++ {
		next := func() string {
			if i+1 < len(fields) {
				i++
				return fields[i]
			}
			return ""
		}

		switch fields[i] {
		case "depth":
			info.Depth, _ = strconv.Atoi(next())
		case "seldepth":
			info.SelDepth, _ = strconv.Atoi(next())
		case "nodes":
			info.Nodes, _ = strconv.ParseInt(next(), 10, 64)
		case "nps":
			info.NPS, _ = strconv.ParseInt(next(), 10, 64)
		case "time":
			info.Time, _ = strconv.Atoi(next())
		case "score":
			switch next() {
			case "cp":
				info.Score, _ = strconv.Atoi(next())
			case "mate":
				info.Mate = true
				info.Score, _ = strconv.Atoi(next())
			}
		case "pv":
			info.PV = append([]string(nil), fields[i+1:]...)
			return info
		case "string":
			info.String = strings.Join(fields[i+1:], " ")
			return info
		}
	}

	return info
}
