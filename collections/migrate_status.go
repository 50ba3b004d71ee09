package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
)

// ResetStaleProcessing finds projects stuck in the transient "processing"
// status from a crashed run and rolls them back to "draft". Projects with no
// status at all (created before the lifecycle field existed) are also
// backfilled. Safe to call on every startup -- returns early if nothing to
// fix.
func ResetStaleProcessing(app *pocketbase.PocketBase) error {
	projectsCol, err := app.FindCollectionByNameOrId("projects")
	if err != nil {
		return fmt.Errorf("migrate: could not find projects collection: %w", err)
	}

	stale, err := app.FindRecordsByFilter(
		projectsCol,
		"status = 'processing' || status = ''",
		"",
		0,
		0,
		nil,
	)
	if err != nil {
		return fmt.Errorf("migrate: could not query stale projects: %w", err)
	}

	if len(stale) == 0 {
		return nil
	}

	log.Printf("migrate: found %d project(s) with stale status -- resetting to draft...\n", len(stale))

	for _, project := range stale {
		project.Set("status", "draft")
		if err := app.Save(project); err != nil {
			return fmt.Errorf("migrate: could not reset project %q: %w", project.Id, err)
		}
	}

	return nil
}
