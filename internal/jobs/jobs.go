package jobs

import (
	"context"
	"fmt"
	"time"

	"crm/internal/clock"
	"crm/internal/domain"
	"crm/internal/logger"

	"go.uber.org/zap"
)

// Job log line formats
const (
	HeartbeatTimeLayout = "02/01/2006-15:04:05"
	HeartbeatSeparator  = " "
	JobTimeLayout       = time.DateTime
	JobSeparator        = " - "
)

// ReminderPageSize is the page size used when following order pages
const ReminderPageSize = 100

// Job is a named periodic task
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// zapClock lets file logs stamp lines with a clock.Clock, in local time
type zapClock struct {
	clock.Clock
}

func (c zapClock) Now() time.Time { return c.Clock.Now().Local() }

func (zapClock) NewTicker(d time.Duration) *time.Ticker { return time.NewTicker(d) }

// OpenHeartbeatLog opens a heartbeat log: "DD/MM/YYYY-HH:MM:SS message"
func OpenHeartbeatLog(path string, clk clock.Clock) (*zap.Logger, func(), error) {
	return logger.NewFileLog(path, HeartbeatTimeLayout, HeartbeatSeparator, zap.WithClock(zapClock{clk}))
}

// OpenJobLog opens a job log: "YYYY-MM-DD HH:MM:SS - message"
func OpenJobLog(path string, clk clock.Clock) (*zap.Logger, func(), error) {
	return logger.NewFileLog(path, JobTimeLayout, JobSeparator, zap.WithClock(zapClock{clk}))
}

// Heartbeat records liveness and checks the hello endpoint
func Heartbeat(client *Client, log *zap.Logger) Job {
	return Job{
		Name: "heartbeat",
		Run: func(ctx context.Context) error {
			log.Info("CRM is alive")

			status, err := client.Hello(ctx)
			if err != nil {
				log.Info(fmt.Sprintf("Failed to reach API endpoint: %v", err))
				return &domain.TransientError{Op: "heartbeat", Err: err}
			}
			if status != 200 {
				log.Info(fmt.Sprintf("API endpoint returned status %d", status))
				return &domain.TransientError{Op: "heartbeat", Err: &StatusError{StatusCode: status}}
			}

			log.Info("API endpoint responded successfully")
			return nil
		},
	}
}

// Restock raises low stock and logs every updated product
func Restock(client *Client, log *zap.Logger) Job {
	return Job{
		Name: "restock",
		Run: func(ctx context.Context) error {
			payload, err := client.RestockProducts(ctx)
			if err != nil {
				log.Info(fmt.Sprintf("Restock failed: %v", err))
				return &domain.TransientError{Op: "restock", Err: err}
			}

			log.Info(payload.Message)
			for _, p := range payload.UpdatedProducts {
				log.Info(fmt.Sprintf("Product: %s, Stock: %d", p.Name, p.Stock))
			}
			return nil
		},
	}
}

// Reminders logs every order placed within window, following all pages
func Reminders(client *Client, log *zap.Logger, clk clock.Clock, window time.Duration) Job {
	return Job{
		Name: "reminders",
		Run: func(ctx context.Context) error {
			since := clk.Now().Add(-window)

			after := ""
			for {
				page, err := client.OrdersSince(ctx, since, ReminderPageSize, after)
				if err != nil {
					log.Info(fmt.Sprintf("Reminder sweep failed: %v", err))
					return &domain.TransientError{Op: "reminders", Err: err}
				}

				for _, o := range page.Items {
					email := ""
					if o.Customer != nil {
						email = o.Customer.Email
					}
					log.Info(fmt.Sprintf("Order ID: %s, Customer Email: %s", o.ID, email))
				}

				if !page.PageInfo.HasMore || page.PageInfo.NextPageToken == "" {
					return nil
				}
				after = page.PageInfo.NextPageToken
			}
		},
	}
}

// Report logs customer and order counts and total revenue
func Report(client *Client, log *zap.Logger) Job {
	return Job{
		Name: "report",
		Run: func(ctx context.Context) error {
			agg, err := client.Aggregate(ctx)
			if err != nil {
				log.Info(fmt.Sprintf("Report failed: %v", err))
				return &domain.TransientError{Op: "report", Err: err}
			}

			log.Info(fmt.Sprintf("Report: %d customers, %d orders, %s revenue",
				agg.CustomersCount, agg.OrdersCount, agg.TotalRevenue.StringFixed(2)))
			return nil
		},
	}
}
