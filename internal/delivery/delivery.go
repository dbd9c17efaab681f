// Package delivery hands a finished PDF to the user: on disk, on stdout or by
// email.
package delivery

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gubarz/tripdoc/internal/itinerary"
)

// OutputMode represents where the finished document goes
type OutputMode string

const (
	OutputFile   OutputMode = "file"
	OutputStdout OutputMode = "stdout"
	OutputEmail  OutputMode = "email"
)

// ParseMode validates a configured output mode
func ParseMode(s string) (OutputMode, error) {
	switch m := OutputMode(s); m {
	case OutputFile, OutputStdout, OutputEmail:
		return m, nil
	case "":
		return OutputFile, nil
	default:
		return "", fmt.Errorf("unknown output mode %q (want file, stdout or email)", s)
	}
}

// Message is an email with a single attachment
type Message struct {
	To         string
	Subject    string
	Body       string
	FileName   string
	Attachment []byte
}

// Mailer defines the interface for email transport
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Package is a finished document ready to deliver
type Package struct {
	Destination string
	Recipient   string
	Data        []byte
}

// FileName returns the name the document is saved and attached under
func (p Package) FileName() string {
	return itinerary.FileName(p.Destination)
}

// Deliverer writes or sends finished documents
type Deliverer struct {
	dir    string
	stdout io.Writer
	mailer Mailer
	logger *slog.Logger
}

// New creates a deliverer saving into dir
func New(dir string) *Deliverer {
	if dir == "" {
		dir = "."
	}
	return &Deliverer{
		dir:    dir,
		stdout: os.Stdout,
		logger: slog.Default(),
	}
}

// WithMailer sets the email transport
func (d *Deliverer) WithMailer(m Mailer) *Deliverer {
	d.mailer = m
	return d
}

// WithStdout sets the writer used by the stdout mode (useful for testing)
func (d *Deliverer) WithStdout(w io.Writer) *Deliverer {
	d.stdout = w
	return d
}

// WithLogger sets the logger
func (d *Deliverer) WithLogger(l *slog.Logger) *Deliverer {
	d.logger = l
	return d
}

// Deliver handles the document according to mode. Email mode saves the file
// first, so a failed send still leaves the document on disk and its path is
// returned together with the error.
func (d *Deliverer) Deliver(ctx context.Context, mode OutputMode, pkg Package) (string, error) {
	switch mode {
	case OutputStdout:
		if _, err := d.stdout.Write(pkg.Data); err != nil {
			return "", fmt.Errorf("%w: writing to stdout: %w", itinerary.ErrDelivery, err)
		}
		return "", nil
	case OutputEmail:
		path, err := d.Save(pkg)
		if err != nil {
			return "", err
		}
		return path, d.Email(ctx, pkg)
	default:
		return d.Save(pkg)
	}
}

// Save writes the document into the output directory. The file appears under
// its final name only once fully written.
func (d *Deliverer) Save(pkg Package) (string, error) {
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: creating %s: %w", itinerary.ErrDelivery, d.dir, err)
	}

	path := filepath.Join(d.dir, pkg.FileName())
	tmp, err := os.CreateTemp(d.dir, ".tripdoc-*.pdf")
	if err != nil {
		return "", fmt.Errorf("%w: %w", itinerary.ErrDelivery, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(pkg.Data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("%w: writing %s: %w", itinerary.ErrDelivery, path, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("%w: writing %s: %w", itinerary.ErrDelivery, path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("%w: %w", itinerary.ErrDelivery, err)
	}

	d.logger.Info("delivery: saved document", "path", path, "bytes", len(pkg.Data))
	return path, nil
}

// Email sends the document to its recipient
func (d *Deliverer) Email(ctx context.Context, pkg Package) error {
	if d.mailer == nil {
		return fmt.Errorf("%w: no mailer configured", itinerary.ErrDelivery)
	}
	if pkg.Recipient == "" {
		return fmt.Errorf("%w: no recipient", itinerary.ErrDelivery)
	}

	msg := Compose(pkg)
	if err := d.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("%w: sending to %s: %w", itinerary.ErrDelivery, pkg.Recipient, err)
	}
	d.logger.Info("delivery: emailed document", "to", pkg.Recipient, "file", msg.FileName)
	return nil
}

// Compose builds the delivery email for a package
func Compose(pkg Package) Message {
	dest := pkg.Destination
	if dest == "" {
		dest = "your trip"
	}
	return Message{
		To:      pkg.Recipient,
		Subject: "Your Detailed Itinerary: " + dest,
		Body: "Hi there,\n\n" +
			"Please find attached your custom travel plan for " + dest + ".\n\n" +
			"Enjoy your trip!\n",
		FileName:   pkg.FileName(),
		Attachment: pkg.Data,
	}
}
