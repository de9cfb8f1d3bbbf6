package ptu

import (
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/cloud"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

//ErrUnknownCloud is returned when the configured cloud name is not recognized
var ErrUnknownCloud = errors.New("unknown azure cloud")

//Conf holds our configuration taken from the environment
type Conf struct {
	Port            string        `envconfig:"FUNCTIONS_CUSTOMHANDLER_PORT" default:"8080"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	EventBinding    string        `envconfig:"EVENT_BINDING" default:"event"`

	AzureCloud    string `envconfig:"AZURE_CLOUD" default:"AzurePublic"`
	AzureTenantID string `envconfig:"AZURE_TENANT_ID"`

	ResourceMarker    string `envconfig:"RESOURCE_MARKER" default:"Microsoft.CognitiveServices/accounts"`
	OperationMarker   string `envconfig:"OPERATION_MARKER" default:"Microsoft.CognitiveServices/accounts/deployments/write"`
	SKUPrefix         string `envconfig:"SKU_PREFIX" default:"provisioned"`
	ReservationMarker string `envconfig:"RESERVATION_MARKER" default:"Provisioned Throughput"`

	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`
	LogDevelopment bool   `envconfig:"LOG_DEVELOPMENT"`
}

//ConfFromEnv will attempt to fill configuration from the process environment
func ConfFromEnv() (cfg *Conf, err error) {
	cfg = &Conf{}
	err = envconfig.Process("PTU", cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}

	if _, err = cfg.Cloud(); err != nil {
		return nil, err
	}

	return cfg, nil
}

//Cloud returns the azure cloud configuration the management clients talk to
func (c *Conf) Cloud() (cloud.Configuration, error) {
	switch strings.ToLower(c.AzureCloud) {
	case "", "azurepublic", "azurecloud":
		return cloud.AzurePublic, nil
	case "azurechina", "azurechinacloud":
		return cloud.AzureChina, nil
	case "azuregovernment", "azureusgovernment":
		return cloud.AzureGovernment, nil
	default:
		return cloud.Configuration{}, errors.Wrapf(ErrUnknownCloud, "'%s'", c.AzureCloud)
	}
}

//Logger builds the structured logger described by the configuration
func (c *Conf) Logger() (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(c.LogLevel)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse log level")
	}

	zcfg := zap.NewProductionConfig()
	if c.LogDevelopment {
		zcfg = zap.NewDevelopmentConfig()
	}

	zcfg.Level = lvl
	logs, err := zcfg.Build()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create logger")
	}

	return logs, nil
}
