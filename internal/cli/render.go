package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/yantrahq/yantra/internal/api/dto/v1/team"
	"github.com/yantrahq/yantra/internal/leaderboard"
	"github.com/yantrahq/yantra/internal/roundgate"
)

// RenderTeam prints a team and its roster.
func RenderTeam(w io.Writer, t *team.DetailsResponse) {
	fmt.Fprintf(w, "Team:     %s\n", t.Name)
	fmt.Fprintf(w, "Code:     %s\n", t.Code)
	fmt.Fprintf(w, "Members:  %d/%d\n", t.MemberCount, t.Capacity)
	fmt.Fprintf(w, "Score:    %g\n", t.Score)
	if t.Submission != nil {
		fmt.Fprintf(w, "Submitted %s at %s\n", t.Submission.Path, t.Submission.Time.Local().Format("2006-01-02 15:04"))
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\nNAME\tEMAIL\tROLE")
	for _, m := range t.Members {
		role := "member"
		if m.Leader {
			role = "leader"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", m.DisplayName, m.Email, role)
	}
	tw.Flush()

	if len(t.Missing) > 0 {
		fmt.Fprintf(w, "(%d member profiles could not be loaded)\n", len(t.Missing))
	}
}

// RenderBoard prints the leaderboard table.
func RenderBoard(w io.Writer, b *leaderboard.Board) {
	if b.Empty {
		fmt.Fprintln(w, "No teams yet.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tTEAM\tMEMBERS\tSCORE")
	for _, r := range b.Rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%g\n", r.Badge, r.Name, r.Members, r.Score)
	}
	tw.Flush()
}

// RenderEntries prints the dashboard navigation entries.
func RenderEntries(w io.Writer, entries []roundgate.Entry) {
	for _, e := range entries {
		marker := "  "
		if e.Active {
			marker = "> "
		}
		state := ""
		if e.Round && !e.Enabled {
			state = " (locked)"
		}
		fmt.Fprintf(w, "%s%s%s\n", marker, strings.ToUpper(e.Section[:1])+e.Section[1:], state)
	}
}
