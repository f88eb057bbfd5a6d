package services

import (
	"context"
	"log"
	"time"

	"github.com/Cavel-Dev/Hurly-sub000/app/models"
	"github.com/Cavel-Dev/Hurly-sub000/app/store"
)

const (
	summaryHour   = 20
	summaryMinute = 5
)

// Scheduler fires the end-of-day attendance email once per day. A per-date
// flag in the local store keeps restarts from re-sending; a failed send gets
// exactly one retry on a later tick.
type Scheduler struct {
	Svc      *store.Service
	Local    *store.LocalStore
	Notifier *Notifier
}

func NewScheduler(svc *store.Service, local *store.LocalStore, notifier *Notifier) *Scheduler {
	return &Scheduler{Svc: svc, Local: local, Notifier: notifier}
}

// Start launches the minute ticker. Runs until the process exits.
func (s *Scheduler) Start() {
	log.Println("Scheduler started (daily summary at 20:05)")
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for now := range ticker.C {
			s.tick(now)
		}
	}()
}

func (s *Scheduler) tick(now time.Time) {
	if now.Hour() < summaryHour || (now.Hour() == summaryHour && now.Minute() < summaryMinute) {
		return
	}
	date := now.Format("2006-01-02")
	if s.Local.Flag("summary_sent_" + date) {
		return
	}
	if s.Local.Flag("summary_retry_" + date) {
		// Already failed once today, give up until tomorrow.
		return
	}

	if err := s.sendDailySummary(date); err != nil {
		log.Printf("Daily summary for %s failed: %v", date, err)
		if e := s.Local.SetFlag("summary_retry_"+date, true); e != nil {
			log.Printf("Failed to record summary retry flag: %v", e)
		}
		go s.scheduleRetry(date)
		return
	}
	if err := s.Local.SetFlag("summary_sent_"+date, true); err != nil {
		log.Printf("Failed to record summary sent flag: %v", err)
	}
}

// scheduleRetry re-attempts a failed summary once after a short delay.
func (s *Scheduler) scheduleRetry(date string) {
	time.Sleep(5 * time.Minute)
	if s.Local.Flag("summary_sent_" + date) {
		return
	}
	if err := s.sendDailySummary(date); err != nil {
		log.Printf("Daily summary retry for %s failed: %v", date, err)
		return
	}
	if err := s.Local.SetFlag("summary_sent_"+date, true); err != nil {
		log.Printf("Failed to record summary sent flag: %v", err)
	}
}

func (s *Scheduler) sendDailySummary(date string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	rows := s.Svc.List(ctx, store.TableAttendance, store.Filter{Date: date})
	if len(rows) == 0 {
		site := ""
		if siteID := s.Svc.ActiveSite(); siteID != "" {
			site = s.siteName(ctx, siteID)
		}
		return s.Notifier.AttendanceMissing(date, site, nil)
	}

	var records []models.AttendanceRecord
	if err := store.Decode(rows, &records); err != nil {
		return err
	}

	threshold := s.Svc.Settings().OvertimeThresholdHours
	if threshold <= 0 {
		threshold = 8
	}
	var flagged []FlaggedRecord
	for _, r := range records {
		hours := 0.0
		if r.Hours != nil {
			hours = *r.Hours
		}
		if r.Overtime || hours > threshold {
			flagged = append(flagged, FlaggedRecord{
				EmployeeName: r.EmployeeName,
				Hours:        hours,
				Overtime:     r.Overtime,
			})
		}
	}
	return s.Notifier.DailySummary(date, len(records), len(flagged), flagged, nil)
}

func (s *Scheduler) siteName(ctx context.Context, siteID string) string {
	var sites []models.Site
	if err := store.Decode(s.Svc.List(ctx, store.TableSites, store.Filter{}), &sites); err != nil {
		return ""
	}
	for _, site := range sites {
		if site.ID == siteID {
			return site.Name
		}
	}
	return ""
}
