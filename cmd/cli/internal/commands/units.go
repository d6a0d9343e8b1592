package commands

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type WhoamiCmd struct{}

func (w *WhoamiCmd) Run(ctx context.Context, globals *Globals) error {
	cl, err := newClient(globals, 30*time.Second)
	if err != nil {
		return err
	}

	me, err := cl.Me(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}

	unit := "-"
	if me.UnitID != nil {
		unit = fmt.Sprintf("%d", *me.UnitID)
	}
	fmt.Printf("ID:    %d\nName:  %s\nEmail: %s\nRole:  %s\nUnit:  %s\n", me.ID, me.Name, me.Email, me.Role, unit)
	return nil
}

type UnitsCmd struct{}

func (u *UnitsCmd) Run(ctx context.Context, globals *Globals) error {
	cl, err := newClient(globals, 30*time.Second)
	if err != nil {
		return err
	}

	units, err := cl.ListUnits(ctx)
	if err != nil {
		return fmt.Errorf("failed to list units: %w", err)
	}

	if len(units) == 0 {
		fmt.Println("No units found.")
		return nil
	}

	fmt.Printf("%-6s %-30s %-24s %-8s %-30s\n", "ID", "Name", "Slug", "Active", "PACS")
	fmt.Println(strings.Repeat("─", 100))

	for _, unit := range units {
		pacs := "-"
		if unit.PACSHost != "" {
			pacs = fmt.Sprintf("%s@%s:%d", unit.PACSAETitle, unit.PACSHost, unit.PACSPort)
		}
		fmt.Printf("%-6d %-30s %-24s %-8t %-30s\n",
			unit.ID,
			truncate(unit.Name, 30),
			truncate(unit.Slug, 24),
			unit.IsActive,
			truncate(pacs, 30))
	}

	return nil
}
