package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/staffbook/staffbook/internal/application/command"
	"github.com/staffbook/staffbook/internal/application/query"
	"github.com/staffbook/staffbook/internal/domain/employee"
	"github.com/staffbook/staffbook/internal/domain/shared"
)

func newDemoCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Walk through hiring, raises, rosters and renames",
		Long: `Hires two employees, two developers and two managers, raises the
shared rate to 1.06, imports two hyphenated records, applies everyone's
raise and then renames and clears one employee's name.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := NewApp(cmd.Context(), s.cfg, s.log)
			if err != nil {
				return err
			}
			defer app.Close()

			return runDemo(cmd.Context(), app, cmd.OutOrStdout())
		},
	}
}

// demo prints through out and keeps the staff it hired.
type demo struct {
	app *App
	out io.Writer
	st  styles
}

type hired struct {
	label string
	staff employee.Staff
}

func runDemo(ctx context.Context, app *App, out io.Writer) error {
	d := &demo{app: app, out: out, st: newStyles(out)}

	// ─────────────────────────────────────────────────────────────────────────
	// Hiring
	// ─────────────────────────────────────────────────────────────────────────
	emp1, err := d.hire(ctx, command.HireCommand{Kind: employee.KindEmployee, First: "John", Last: "Smith", Pay: 100_000})
	if err != nil {
		return err
	}
	emp2, err := d.hire(ctx, command.HireCommand{Kind: employee.KindEmployee, First: "John", Last: "Doe", Pay: 120_000})
	if err != nil {
		return err
	}
	dev1, err := d.hire(ctx, command.HireCommand{Kind: employee.KindDeveloper, First: "Smith", Last: "Developer", Pay: 120_000, Language: "Python"})
	if err != nil {
		return err
	}
	dev2, err := d.hire(ctx, command.HireCommand{Kind: employee.KindDeveloper, First: "Doe", Last: "Developer", Pay: 140_000, Language: "Java"})
	if err != nil {
		return err
	}
	mgr1, err := d.hire(ctx, command.HireCommand{Kind: employee.KindManager, First: "Jono", Last: "Smith", Pay: 150_000, ReportIDs: []string{dev1.ID()}})
	if err != nil {
		return err
	}
	mgr2, err := d.hire(ctx, command.HireCommand{Kind: employee.KindManager, First: "Jose", Last: "Smith", Pay: 180_000, ReportIDs: []string{dev2.ID()}})
	if err != nil {
		return err
	}

	if _, err := app.SharedRate.Handle(ctx, command.SetSharedRateCommand{Rate: 1.06}); err != nil {
		return err
	}

	new1, err := d.hire(ctx, command.HireCommand{Record: "Johnny-Smith-110_000"})
	if err != nil {
		return err
	}
	new2, err := d.hire(ctx, command.HireCommand{Record: "Johnny-Doe-130_000"})
	if err != nil {
		return err
	}

	// ─────────────────────────────────────────────────────────────────────────
	// Pay
	// ─────────────────────────────────────────────────────────────────────────
	d.heading("Staff and raises")
	for _, h := range []hired{
		{"Employee", emp1}, {"Employee", emp2},
		{"Developer", dev1}, {"Developer", dev2},
		{"Manager", mgr1}, {"Manager", mgr2},
		{"New Employee", new1}, {"New Employee", new2},
	} {
		if err := d.payLine(ctx, h); err != nil {
			return err
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// Class-wide state
	// ─────────────────────────────────────────────────────────────────────────
	d.heading("Headcount and calendar")
	count, err := app.Headcount.Handle(ctx)
	if err != nil {
		return err
	}
	d.printf("The number of employees: %d\n", count.Constructed)

	for _, date := range []string{"2016-07-11", "2016-07-10"} {
		res, err := query.Workday(query.WorkdayQuery{Date: date})
		if err != nil {
			return err
		}
		d.printf("Is it workday? %v %s\n", res.IsWorkday, d.st.Muted.Render("("+date+", "+res.Weekday.String()+")"))
	}

	// ─────────────────────────────────────────────────────────────────────────
	// Kinds
	// ─────────────────────────────────────────────────────────────────────────
	d.heading("Kinds")
	d.printf("Is Manager an instance of Employee? %v\n", mgr1.Kind().IsA(employee.KindEmployee))
	d.printf("Is Manager an instance of Developer? %v\n", employee.IsDeveloper(mgr1))
	d.printf("Is Developer a subclass of Employee? %v\n", employee.KindDeveloper.IsA(employee.KindEmployee))
	d.printf("Is Manager a subclass of Employee? %v\n", employee.KindManager.IsA(employee.KindEmployee))
	d.printf("Is Manager a subclass of Developer? %v\n", employee.KindManager.IsA(employee.KindDeveloper))

	// ─────────────────────────────────────────────────────────────────────────
	// Representations
	// ─────────────────────────────────────────────────────────────────────────
	d.heading("Representations")
	d.printf("Called object emp_1 itself: %v\n", emp1)
	d.printf("Called object emp_2 itself: %v\n", emp2)
	d.printf("Called object emp_1 using GoString: %#v\n", emp1)
	d.printf("Called object emp_2 using String: %s\n", emp2.String())

	// ─────────────────────────────────────────────────────────────────────────
	// Names
	// ─────────────────────────────────────────────────────────────────────────
	d.heading("Names")
	if _, err := app.Rename.Handle(ctx, command.RenameCommand{StaffID: emp1.ID(), Fullname: "Name Change"}); err != nil {
		return err
	}
	card, err := app.StaffCard.Handle(ctx, query.StaffCardQuery{StaffID: emp1.ID()})
	if err != nil {
		return err
	}
	d.printf("First: %s\n", deref(card.First))
	d.printf("Last: %s\n", deref(card.Last))
	d.printf("Full: %s\n", card.Fullname)
	d.printf("Email: %s\n", card.Email)

	if err := d.announceNotices(); err != nil {
		return err
	}
	if _, err := app.Rename.HandleClear(ctx, command.ClearNameCommand{StaffID: emp1.ID()}); err != nil {
		return err
	}
	d.printf("Called object emp_1 after clearing: %q\n", emp1.String())
	return nil
}

func (d *demo) hire(ctx context.Context, cmd command.HireCommand) (employee.Staff, error) {
	res, err := d.app.Hire.Handle(ctx, cmd)
	if err != nil {
		return nil, err
	}
	return res.Staff, nil
}

// payLine prints name, email, pay before and after the raise, the
// developer's language and a manager's roster.
func (d *demo) payLine(ctx context.Context, h hired) error {
	card, err := d.app.StaffCard.Handle(ctx, query.StaffCardQuery{StaffID: h.staff.ID()})
	if err != nil {
		return err
	}
	raise, err := d.app.Raise.Handle(ctx, command.ApplyRaiseCommand{StaffID: h.staff.ID()})
	if err != nil {
		return err
	}

	line := fmt.Sprintf("%s: %s %s %d %d", h.label, card.Fullname, card.Email, raise.OldPay, raise.NewPay)
	if card.Language != "" {
		line += " " + card.Language
	}
	d.printf("%s\n", line)

	if !employee.IsManager(h.staff) {
		return nil
	}
	roster, err := d.app.RosterView.Handle(ctx, query.RosterQuery{ManagerID: h.staff.ID()})
	if err != nil {
		return err
	}
	for _, name := range roster.Reports {
		d.printf("Manages: %s\n", name)
	}
	return nil
}

// announceNotices prints the clear notices as the bus delivers them.
func (d *demo) announceNotices() error {
	messages := map[shared.EventType]string{
		shared.EventNameClearing: "Deleting name...",
		shared.EventNameCleared:  "Name deleted!",
	}
	for eventType, msg := range messages {
		if err := d.app.Bus.Subscribe(eventType, func(shared.Event) error {
			d.printf("%s\n", msg)
			return nil
		}); err != nil {
			return err
		}
	}
	return nil
}

func (d *demo) heading(title string) {
	fmt.Fprintln(d.out, d.st.Heading.Render("== "+title+" =="))
}

func (d *demo) printf(format string, args ...any) {
	fmt.Fprintf(d.out, format, args...)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
