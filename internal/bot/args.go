package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/chihoong/discord-summarizer-bot/internal/models"
)

const (
	defaultHours = 24
	defaultLimit = 100
)

// errUsage marks malformed command arguments
var errUsage = errors.New("invalid arguments")

// channelError carries the user's channel reference
type channelError struct {
	ref string
	err error
}

func (e *channelError) Error() string {
	return fmt.Sprintf("%v: %s", e.err, e.ref)
}

func (e *channelError) Unwrap() error {
	return e.err
}

// command is a parsed prefix command
type command struct {
	name string
	args []string
}

// parseCommand splits a message into a command name and arguments.
// ok is false when the message does not start with the prefix.
func parseCommand(content, prefix string) (command, bool) {
	content = strings.TrimSpace(content)
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return command{}, false
	}

	fields := strings.Fields(strings.TrimPrefix(content, prefix))
	if len(fields) == 0 {
		return command{}, false
	}

	return command{name: strings.ToLower(fields[0]), args: fields[1:]}, true
}

// relativeArgs are the optional trailing arguments of summarize commands
type relativeArgs struct {
	hours int
	limit int
	style models.Style
}

// parseRelativeArgs reads [hours] [limit] [style]
func parseRelativeArgs(args []string) (relativeArgs, error) {
	out := relativeArgs{hours: defaultHours, limit: defaultLimit, style: models.StyleComprehensive}
	if len(args) > 3 {
		return out, fmt.Errorf("%w: expected at most 3 arguments, got %d", errUsage, len(args))
	}

	var err error
	if len(args) > 0 {
		if out.hours, err = positiveInt("hours", args[0]); err != nil {
			return out, err
		}
	}
	if len(args) > 1 {
		if out.limit, err = positiveInt("limit", args[1]); err != nil {
			return out, err
		}
	}
	if len(args) > 2 {
		if out.style, err = models.ParseStyle(args[2]); err != nil {
			return out, err
		}
	}
	return out, nil
}

// customArgs are the arguments of summarize_custom
type customArgs struct {
	channel     string
	startDate   string
	endDate     string
	instruction string
}

func parseCustomArgs(args []string) (customArgs, error) {
	if len(args) < 4 {
		return customArgs{}, fmt.Errorf("%w: expected <channel> <start> <end> <instruction>", errUsage)
	}
	return customArgs{
		channel:     args[0],
		startDate:   args[1],
		endDate:     args[2],
		instruction: strings.Join(args[3:], " "),
	}, nil
}

func positiveInt(name, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a whole number, got %q", errUsage, name, value)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%w: %s must be positive, got %d", errUsage, name, n)
	}
	return n, nil
}

// clampLimit caps limit at max. The notice is empty when nothing changed.
func clampLimit(limit, max int) (int, string) {
	if max <= 0 || limit <= max {
		return limit, ""
	}
	return max, fmt.Sprintf("⚠️ Message limit capped at %d.", max)
}

// resolveChannel finds a guild channel by name, #name or <#id> mention.
// Only text channels can be summarized.
func resolveChannel(channels []*discordgo.Channel, ref string) (*discordgo.Channel, error) {
	ref = strings.TrimSpace(ref)

	var found *discordgo.Channel
	if id, ok := mentionID(ref); ok {
		for _, ch := range channels {
			if ch.ID == id {
				found = ch
				break
			}
		}
	} else {
		name := strings.TrimPrefix(ref, "#")
		for _, ch := range channels {
			if ch.Name == name {
				found = ch
				break
			}
		}
		if found == nil {
			for _, ch := range channels {
				if strings.EqualFold(ch.Name, name) {
					found = ch
					break
				}
			}
		}
	}

	if found == nil {
		return nil, &channelError{ref: ref, err: models.ErrUnknownChannel}
	}
	if !isTextChannel(found) {
		return nil, &channelError{ref: ref, err: models.ErrNotATextChannel}
	}
	return found, nil
}

func mentionID(ref string) (string, bool) {
	if strings.HasPrefix(ref, "<#") && strings.HasSuffix(ref, ">") {
		return ref[2 : len(ref)-1], true
	}
	return "", false
}

func isTextChannel(ch *discordgo.Channel) bool {
	return ch.Type == discordgo.ChannelTypeGuildText || ch.Type == discordgo.ChannelTypeGuildNews
}
