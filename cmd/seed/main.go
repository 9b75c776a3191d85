// seed inserts a small group tree and staff roster into the local dev
// database. Run: go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/rosterd/rosterd/internal/infrastructure/postgres"
)

type groupSpec struct {
	name   string
	parent string // empty means root
}

type staffSpec struct {
	name     string
	email    string
	position string
	status   string
	groups   []string
}

var groups = []groupSpec{
	{"Hospital", ""},
	{"Nursing", "Hospital"},
	{"Ward A", "Nursing"},
	{"Ward B", "Nursing"},
	{"Radiology", "Hospital"},
}

var staff = []staffSpec{
	{"Aisha Karimova", "aisha@seed.local", "Nurse", "ACTIVE", []string{"Ward A"}},
	{"Bakyt Orozov", "bakyt@seed.local", "Nurse", "ACTIVE", []string{"Ward A"}},
	{"Chinara Asanova", "chinara@seed.local", "Nurse", "ACTIVE", []string{"Ward A"}},
	{"Daniyar Toktogulov", "daniyar@seed.local", "Nurse", "ACTIVE", []string{"Ward B"}},
	{"Elmira Sadykova", "elmira@seed.local", "Nurse", "ACTIVE", []string{"Ward B"}},
	{"Farhat Mambetov", "farhat@seed.local", "Head Nurse", "ACTIVE", []string{"Nursing"}},
	{"Gulnara Isaeva", "gulnara@seed.local", "Radiologist", "ACTIVE", []string{"Radiology"}},
	{"Ilyas Dzhumabekov", "ilyas@seed.local", "Radiologist", "ACTIVE", []string{"Radiology"}},
	{"Jamilya Omurbekova", "jamilya@seed.local", "Technician", "ACTIVE", []string{"Radiology", "Ward B"}},
	{"Kanat Esenov", "kanat@seed.local", "Nurse", "ACTIVE", []string{"Ward A", "Ward B"}},
	{"Leyla Abdyldaeva", "leyla@seed.local", "Nurse", "ACTIVE", []string{"Ward B"}},
	// On leave: must never appear in a generated schedule
	{"Marat Chorobaev", "marat@seed.local", "Nurse", "INACTIVE", []string{"Ward A"}},
}

func main() {
	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	pool, err := postgres.NewPool(ctx, dbURL, 5)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	// Upsert groups in declaration order so parents exist first
	groupIDs := make(map[string]string, len(groups))
	for _, spec := range groups {
		var parentID any
		if spec.parent != "" {
			parentID = groupIDs[spec.parent]
		}

		var id string
		err := pool.QueryRow(ctx, `
			INSERT INTO staff_groups (id, name, parent_id)
			VALUES (gen_random_uuid(), $1, $2)
			ON CONFLICT (name) DO UPDATE SET parent_id = EXCLUDED.parent_id, updated_at = NOW()
			RETURNING id`,
			spec.name, parentID,
		).Scan(&id)
		if err != nil {
			log.Fatalf("upsert group %s: %v", spec.name, err)
		}
		groupIDs[spec.name] = id
	}

	var memberships int
	for _, spec := range staff {
		var staffID string
		err := pool.QueryRow(ctx, `
			INSERT INTO staff (id, name, email, position, status)
			VALUES (gen_random_uuid(), $1, $2, $3, $4)
			ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name, position = EXCLUDED.position, status = EXCLUDED.status, updated_at = NOW()
			RETURNING id`,
			spec.name, spec.email, spec.position, spec.status,
		).Scan(&staffID)
		if err != nil {
			log.Fatalf("upsert staff %s: %v", spec.email, err)
		}

		for _, groupName := range spec.groups {
			_, err := pool.Exec(ctx, `
				INSERT INTO group_memberships (id, staff_id, group_id)
				VALUES (gen_random_uuid(), $1, $2)
				ON CONFLICT (staff_id, group_id) DO NOTHING`,
				staffID, groupIDs[groupName])
			if err != nil {
				log.Fatalf("add %s to %s: %v", spec.email, groupName, err)
			}
			memberships++
		}
	}

	fmt.Println("Seed complete")
	fmt.Println()
	fmt.Printf("  Groups:      %d\n", len(groups))
	fmt.Printf("  Staff:       %d  (1 inactive)\n", len(staff))
	fmt.Printf("  Memberships: %d\n", memberships)
	fmt.Println()
	fmt.Println("  Group IDs:")
	for _, spec := range groups {
		fmt.Printf("    %-10s %s\n", spec.name, groupIDs[spec.name])
	}
	fmt.Println()
	fmt.Println("How to test:")
	fmt.Println()
	fmt.Println("  Step 1 — resolve the full hospital roster:")
	fmt.Println()
	fmt.Printf("    curl -s http://localhost:8080/api/v1/groups/%s/resolved-members\n", groupIDs["Hospital"])
	fmt.Println()
	fmt.Println("  Step 2 — request a schedule (period must start on a Monday):")
	fmt.Println()
	fmt.Printf("    curl -s -X POST http://localhost:8081/api/v1/schedules \\\n")
	fmt.Printf("      -H 'Content-Type: application/json' \\\n")
	fmt.Printf("      -d '{\"staff_group_id\":\"%s\",\"period_begin_date\":\"2026-09-07\"}'\n", groupIDs["Nursing"])
	fmt.Println()
	fmt.Println("  Step 3 — poll the status, then fetch the result:")
	fmt.Println()
	fmt.Println("    curl -s http://localhost:8081/api/v1/schedules/SCHEDULE_ID/status")
	fmt.Println("    curl -s http://localhost:8081/api/v1/schedules/SCHEDULE_ID")
}
