package autojig

import "math"

// BaudRate is the serial speed used by the firmware and every host client.
const BaudRate = 115200

// The command channel carries one signed decimal integer per line.
// 0 is a no-op, 1 starts an auto cycle, anything else is a relative
// step count for a manual move.
const autoCycleValue = 1

// CommandKind identifies what a parsed command line asks for.
type CommandKind int

const (
	CommandNone CommandKind = iota
	CommandAutoCycle
	CommandMoveSteps
)

func (k CommandKind) String() string {
	switch k {
	case CommandAutoCycle:
		return "AutoCycle"
	case CommandMoveSteps:
		return "MoveSteps"
	default:
		fallthrough
	case CommandNone:
		return "None"
	}
}

// Command is a single parsed instruction from the serial stream.
type Command struct {
	Kind  CommandKind
	Steps int32
}

// ParseCommand extracts the leading signed integer from a command line,
// ignoring any surrounding non-digit bytes. Everything after the number is
// discarded. Lines without a number, and the explicit no-op value 0,
// produce CommandNone.
func ParseCommand(line []byte) Command {
	var (
		value    int32
		negative bool
		started  bool
	)

	for i := 0; i < len(line); i++ {
		b := line[i]
		if b >= '0' && b <= '9' {
			if !started {
				started = true
				// a '-' only counts when it immediately precedes the first digit
				negative = i > 0 && line[i-1] == '-'
			}
			digit := int32(b - '0')
			if value > (math.MaxInt32-digit)/10 {
				// does not fit an int32 step count: malformed, ignore
				return Command{Kind: CommandNone}
			}
			value = value*10 + digit
			continue
		}
		if started {
			break
		}
	}

	if !started || value == 0 {
		return Command{Kind: CommandNone}
	}
	if negative {
		value = -value
	}

	if value == autoCycleValue {
		return Command{Kind: CommandAutoCycle}
	}
	return Command{Kind: CommandMoveSteps, Steps: value}
}
