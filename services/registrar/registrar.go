package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iot"
	"github.com/joeshaw/envdecode"
	"github.com/relabs-tech/vibecloud/core/awsconfig"
	"github.com/relabs-tech/vibecloud/core/logger"
	"github.com/relabs-tech/vibecloud/iot/credentials"
)

// Service holds the configuration for the registrar
type Service struct {
	CertificateFile string `env:"CERTIFICATE_FILE,default=device.pem" description:"the PEM encoded device certificate"`
	Region          string `env:"IOT_REGION,default=ca-central-1" description:"the AWS region of the IoT registry"`
	ThingName       string `env:"THING_NAME,default=012333B76CAC4C3701" description:"the thing to attach to the certificate"`
	PolicyName      string `env:"POLICY_NAME,default=VibrationMonitorPolicy" description:"the IoT policy to attach to the certificate"`
	AccessID        string `env:"AWS_ACCESS_KEY_ID" description:"optional static AWS access key id"`
	AccessKey       string `env:"AWS_SECRET_ACCESS_KEY" description:"optional static AWS secret access key"`
	LogLevel        string `env:"LOG_LEVEL,default=warn" description:"the logrus log level"`
}

func main() {
	service := &Service{}
	if err := envdecode.Decode(service); err != nil {
		panic(err)
	}
	logger.InitLogger(logger.ParseLevel(service.LogLevel))

	newControlPlane := func(cfg aws.Config) credentials.ControlPlane {
		return iot.NewFromConfig(cfg)
	}
	os.Exit(run(context.Background(), service, newControlPlane, os.Stdout, os.Stderr))
}

// run registers the certificate and returns the process exit code. Every failure is
// reported the same way, as a single line on stderr and exit code 1.
func run(ctx context.Context, s *Service, newControlPlane func(aws.Config) credentials.ControlPlane, stdout, stderr io.Writer) int {
	cert, err := register(ctx, s, newControlPlane, stdout)
	if err != nil {
		if cert != nil {
			fmt.Fprintf(stderr, "Error: %v (certificate %s remains registered)\n", err, cert.ARN)
		} else {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 1
	}
	fmt.Fprintln(stdout, "\nRegistration complete! Device should now be able to connect to AWS IoT.")
	return 0
}

func register(ctx context.Context, s *Service, newControlPlane func(aws.Config) credentials.ControlPlane, stdout io.Writer) (*credentials.Certificate, error) {
	certPEM, err := credentials.ReadCertificate(s.CertificateFile)
	if err != nil {
		return nil, err
	}

	cfg, err := awsconfig.Load(ctx, awsconfig.Configuration{
		Region:    s.Region,
		AccessID:  s.AccessID,
		AccessKey: s.AccessKey,
	})
	if err != nil {
		return nil, err
	}

	registrar := credentials.NewRegistrar(&credentials.Builder{
		ControlPlane: newControlPlane(cfg),
		Progress: func(stage credentials.Stage, done bool, message string) {
			if !done && stage != credentials.StageRegisterCertificate {
				fmt.Fprintln(stdout)
			}
			fmt.Fprintln(stdout, message)
		},
	})

	return registrar.Register(ctx, credentials.Registration{
		CertificatePEM: certPEM,
		ThingName:      s.ThingName,
		PolicyName:     s.PolicyName,
	})
}
