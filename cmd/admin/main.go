package main

import (
	"civicdesk/backend/internal/api/middleware"
	"civicdesk/backend/internal/complaint"
	"civicdesk/backend/internal/config"
	"civicdesk/backend/internal/models"
	"civicdesk/backend/internal/storage"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const usage = `Usage: admin <command> [args]

Commands:
  add-officer <name> <email> <department> [--approved]
  approve-officer <officer_id>
  escalate-overdue
  stats
  issue-token <user_id> <CITIZEN|OFFICER|ADMIN> [ttl_hours]`

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	ctx := complaint.WithActor(context.Background(), "admin-cli")
	command := os.Args[1]

	// issue-token needs no database.
	if command == "issue-token" {
		if len(os.Args) < 4 {
			fmt.Println("Usage: admin issue-token <user_id> <CITIZEN|OFFICER|ADMIN> [ttl_hours]")
			os.Exit(1)
		}
		ttl := 24
		if len(os.Args) > 4 {
			var err error
			ttl, err = strconv.Atoi(os.Args[4])
			if err != nil || ttl <= 0 {
				fmt.Println("Invalid ttl. Please provide a positive integer.")
				os.Exit(1)
			}
		}
		token, err := issueToken(cfg, os.Args[2], os.Args[3], time.Duration(ttl)*time.Hour)
		if err != nil {
			log.Fatalf("Error issuing token: %v", err)
		}
		fmt.Println(token)
		return
	}

	db, err := storage.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	var rdb *redis.Client
	if cfg.RedisEnabled() {
		rdb, err = storage.ConnectRedis(context.Background(), cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect redis: %v", err)
		}
		defer rdb.Close()
	}
	storageSvc := storage.NewStorageService(db, rdb)
	if err := storageSvc.Migrate(); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	switch command {
	case "add-officer":
		if len(os.Args) < 5 {
			fmt.Println("Usage: admin add-officer <name> <email> <department> [--approved]")
			os.Exit(1)
		}
		approved := len(os.Args) > 5 && os.Args[5] == "--approved"
		officer, err := addOfficer(ctx, storageSvc, os.Args[2], os.Args[3], os.Args[4], approved)
		if err != nil {
			log.Fatalf("Error adding officer: %v", err)
		}
		fmt.Printf("Officer %d (%s, %s) created with status %s.\n", officer.ID, officer.Name, officer.Department, officer.Status)
	case "approve-officer":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin approve-officer <officer_id>")
			os.Exit(1)
		}
		id, err := strconv.ParseUint(os.Args[2], 10, 64)
		if err != nil {
			fmt.Println("Invalid officer ID. Please provide an integer.")
			os.Exit(1)
		}
		officer, err := storageSvc.ApproveOfficer(ctx, uint(id))
		if err != nil {
			log.Fatalf("Error approving officer: %v", err)
		}
		fmt.Printf("Officer %d (%s) has been approved.\n", officer.ID, officer.Name)
	case "escalate-overdue":
		svc := newComplaintService(cfg, storageSvc)
		report, err := svc.EscalateOverdue(ctx)
		if err != nil {
			log.Fatalf("Error escalating overdue complaints: %v", err)
		}
		fmt.Printf("Checked %d, escalated %d, skipped %d, failed %d.\n",
			report.Checked, len(report.Escalated), report.Skipped, report.Failed)
		for _, id := range report.Escalated {
			fmt.Println("  escalated", id)
		}
	case "stats":
		svc := newComplaintService(cfg, storageSvc)
		stats, err := svc.GetStatistics(ctx)
		if err != nil {
			log.Fatalf("Error computing statistics: %v", err)
		}
		out, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			log.Fatalf("Error encoding statistics: %v", err)
		}
		fmt.Println(string(out))
	default:
		fmt.Println("Unknown command")
		fmt.Println(usage)
		os.Exit(1)
	}
}

func addOfficer(ctx context.Context, s *storage.Service, name, email, department string, approved bool) (*models.Officer, error) {
	dept := models.Department(department)
	if !dept.Valid() {
		return nil, fmt.Errorf("unknown department %q", department)
	}
	officer := &models.Officer{
		Name:       strings.TrimSpace(name),
		Email:      strings.TrimSpace(email),
		Department: dept,
		Status:     models.OfficerPending,
	}
	if approved {
		officer.Status = models.OfficerApproved
	}
	if err := s.SaveOfficer(ctx, officer); err != nil {
		return nil, err
	}
	return officer, nil
}

// newComplaintService shares locks and events with running servers when Redis is configured.
func newComplaintService(cfg *config.Config, s *storage.Service) *complaint.Service {
	var notifier complaint.Notifier
	if publisher := s.Publisher(); publisher != nil {
		notifier = publisher
	}
	svc := complaint.NewService(s, s, s.Locker(), notifier)
	svc.LockTTL = cfg.LockTTL
	return svc
}

func issueToken(cfg *config.Config, userID, role string, ttl time.Duration) (string, error) {
	r := models.Role(strings.ToUpper(role))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", role)
	}
	return middleware.IssueToken(models.Principal{UserID: userID, Role: r}, cfg.JWTSecret, ttl)
}
