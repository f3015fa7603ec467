package apophis

import "strings"

// Channel is the language classification assigned to a run of source lines.
type Channel int

const (
	// ChannelScript routes to the in-process restricted subset (lines
	// prefixed with ':').
	ChannelScript Channel = iota

	// ChannelRuby routes to the out-of-process Ruby bridge (lines
	// prefixed with ';').
	ChannelRuby

	// ChannelMalbolge routes to the esoteric engine (any unprefixed line).
	ChannelMalbolge
)

func (c Channel) String() string {
	switch c {
	case ChannelScript:
		return "script"
	case ChannelRuby:
		return "ruby"
	case ChannelMalbolge:
		return "malbolge"
	}
	return "unknown"
}

// Sentinel returns the line prefix that routes a line to this channel.
// Malbolge has no sentinel; its lines are the unprefixed remainder.
func (c Channel) Sentinel() string {
	switch c {
	case ChannelScript:
		return ":"
	case ChannelRuby:
		return ";"
	}
	return ""
}

// Segment is a maximal run of consecutive same-channel lines, with channel
// sentinels stripped and the lines rejoined by newlines. Segments are
// immutable once produced; Order is the segment's position in the
// document, starting at 0.
type Segment struct {
	Channel Channel
	Text    string
	Order   int
}

// Split partitions raw hybrid source into ordered segments.
//
// Each line is classified by its first character: ':' is script, ';' is
// Ruby (sentinel stripped in both cases), '#' or an empty line is dropped
// entirely, and anything else is Malbolge, unmodified. Dropped lines
// neither open nor close a segment. Consecutive lines of one channel
// accumulate into a single segment; a channel change starts a new one.
//
// Split is deterministic and stateless: identical input always yields an
// identical segment sequence. A document that is empty after dropping
// comments and blanks yields an empty (nil) slice.
func Split(source string) []Segment {
	var segments []Segment
	var current []string
	channel := ChannelScript
	open := false

	flush := func() {
		if !open {
			return
		}
		segments = append(segments, Segment{
			Channel: channel,
			Text:    strings.Join(current, "\n"),
			Order:   len(segments),
		})
		current = nil
		open = false
	}

	for _, line := range strings.Split(source, "\n") {
		var ch Channel
		var text string
		switch {
		case line == "" || strings.HasPrefix(line, "#"):
			continue
		case strings.HasPrefix(line, ":"):
			ch, text = ChannelScript, line[1:]
		case strings.HasPrefix(line, ";"):
			ch, text = ChannelRuby, line[1:]
		default:
			ch, text = ChannelMalbolge, line
		}
		if open && ch != channel {
			flush()
		}
		channel = ch
		current = append(current, text)
		open = true
	}
	flush()
	return segments
}

// Join reconstructs stripped hybrid source from a segment list, reinserting
// channel sentinels. Split(Join(Split(src))) always equals Split(src).
func Join(segments []Segment) string {
	var b strings.Builder
	for i, seg := range segments {
		if i > 0 {
			b.WriteByte('\n')
		}
		sentinel := seg.Channel.Sentinel()
		for j, line := range strings.Split(seg.Text, "\n") {
			if j > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(sentinel)
			b.WriteString(line)
		}
	}
	return b.String()
}
