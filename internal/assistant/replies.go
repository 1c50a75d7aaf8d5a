package assistant

import (
	"fmt"
	"strings"
	"time"

	"github.com/aryanma11ick/Neura/internal/gcal"
)

const (
	replyLinkRequired = "You haven't linked your Google Calendar yet. Send me \"link my calendar\" and I'll set you up!"

	replyExtractionFailed = "Sorry, I couldn't work out the event details from that. Could you rephrase with a title and a time? For example: \"Dinner with Priya tomorrow at 8pm\"."

	replyCalendarFailed = "I hit a snag talking to Google Calendar. Please try again in a moment."

	replyChatFallback = "I'm Neura, your calendar assistant! I can create events, move them around, or show your schedule. What would you like to do?"
)

func replyLinkInstruction(authURL string) string {
	return "Let's link your Google Calendar! Open this link and sign in:\n\n" + authURL +
		"\n\nI'll confirm here once you're connected."
}

func replyAlreadyLinked() string {
	return "Your Google Calendar is already linked! Ask me to create an event, move one, or show your schedule."
}

func replyEventCreated(title string, start time.Time, meetLink string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ Done! '%s' is on your calendar for %s.", title, formatWhen(start))
	if meetLink != "" {
		fmt.Fprintf(&b, "\n🔗 Google Meet: %s", meetLink)
	}
	return b.String()
}

func replyEventMoved(title string, start time.Time) string {
	return fmt.Sprintf("✅ Moved '%s' to %s.", title, formatWhen(start))
}

func replyEventUpdated(title string) string {
	return fmt.Sprintf("✅ Updated '%s'.", title)
}

func replyNoMatch(query string) string {
	return fmt.Sprintf("I couldn't find an upcoming event that looks like '%s'. Try \"show my schedule\" to see what's on.", query)
}

func replyUpdateNeedsTarget() string {
	return "Which event should I change? Tell me something like \"move jogging with Aakash to 8am tomorrow\"."
}

func replySchedule(day time.Time, events []gcal.Event) string {
	if len(events) == 0 {
		return fmt.Sprintf("Your calendar is clear on %s. Enjoy the free time!", day.Format("Monday, 02 Jan"))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Here's your schedule for %s:\n", day.Format("Monday, 02 Jan"))
	for _, ev := range events {
		fmt.Fprintf(&b, "\n🗓️ %s – %s", ev.Title, ev.Start.Format("03:04 PM"))
	}
	return b.String()
}

func formatWhen(t time.Time) string {
	return t.Format("Monday, 02 Jan at 03:04 PM")
}
