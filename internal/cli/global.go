package cli

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"alfredoptarigan/resumeai/internal/auth"
	"alfredoptarigan/resumeai/internal/config"
)

type GlobalOptions struct {
	APIURL    string
	StorePath string
	Timeout   time.Duration
}

// DefaultGlobalOptions starts from the environment, falling back to the
// built-in defaults when it cannot be read.
func DefaultGlobalOptions() GlobalOptions {
	o := GlobalOptions{
		APIURL:    "http://localhost:5000/api",
		StorePath: ".resumeai/session.db",
		Timeout:   10 * time.Second,
	}
	if cfg, err := config.LoadClient(); err == nil {
		o.APIURL = cfg.Auth.APIURL
		o.StorePath = cfg.Auth.StorePath
		o.Timeout = cfg.Auth.Timeout
	}
	return o
}

func (o *GlobalOptions) Bind(fs *pflag.FlagSet) {
	fs.StringVarP(&o.APIURL, "api-url", "u", o.APIURL, "Address of the authentication API")
	fs.StringVar(&o.StorePath, "store", o.StorePath, "File holding the local session token")
	fs.DurationVar(&o.Timeout, "timeout", o.Timeout, "Timeout for API requests")
}

func (o *GlobalOptions) Complete(cmd *cobra.Command, args []string) error {
	return nil
}

func (o *GlobalOptions) Validate(args []string) error {
	if o.APIURL == "" {
		return errors.New("--api-url must not be empty")
	}
	if o.StorePath == "" {
		return errors.New("--store must not be empty")
	}
	return nil
}

func (o *GlobalOptions) Client() (*auth.Client, error) {
	store, err := auth.OpenTokenStore(o.StorePath)
	if err != nil {
		return nil, err
	}
	return auth.NewClient(auth.Config{BaseURL: o.APIURL, Timeout: o.Timeout}, store), nil
}

// displayError keeps auth messages as the user-facing text.
func displayError(err error) error {
	var authErr *auth.Error
	if errors.As(err, &authErr) {
		return errors.New(authErr.Message)
	}
	return err
}
