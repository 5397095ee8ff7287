package credentials

import (
	"context"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iot"
	"github.com/aws/aws-sdk-go-v2/service/iot/types"
	"github.com/relabs-tech/vibecloud/core/logger"
)

// ControlPlane is the subset of the AWS IoT API used for registration. It is satisfied
// by *iot.Client.
type ControlPlane interface {
	RegisterCertificateWithoutCA(ctx context.Context, params *iot.RegisterCertificateWithoutCAInput, optFns ...func(*iot.Options)) (*iot.RegisterCertificateWithoutCAOutput, error)
	AttachPolicy(ctx context.Context, params *iot.AttachPolicyInput, optFns ...func(*iot.Options)) (*iot.AttachPolicyOutput, error)
	AttachThingPrincipal(ctx context.Context, params *iot.AttachThingPrincipalInput, optFns ...func(*iot.Options)) (*iot.AttachThingPrincipalOutput, error)
}

// Registration describes which certificate is registered for which thing
type Registration struct {
	CertificatePEM string
	ThingName      string
	PolicyName     string
}

// Certificate is the certificate identity assigned by AWS IoT
type Certificate struct {
	ARN string
	ID  string
}

// Progress receives a notification before and after every remote call. Message is a
// human readable line suitable for console output.
type Progress func(stage Stage, done bool, message string)

// Registrar registers certificates with AWS IoT
type Registrar struct {
	cp       ControlPlane
	progress Progress
}

// Builder is a builder helper for the Registrar
type Builder struct {
	// ControlPlane is the AWS IoT client. This is mandatory.
	ControlPlane ControlPlane
	// Progress is optional
	Progress Progress
}

// NewRegistrar returns a new Registrar
func NewRegistrar(b *Builder) *Registrar {
	if b.ControlPlane == nil {
		panic("ControlPlane is missing")
	}
	progress := b.Progress
	if progress == nil {
		progress = func(Stage, bool, string) {}
	}
	return &Registrar{cp: b.ControlPlane, progress: progress}
}

// ReadCertificate reads the PEM encoded certificate from path
func ReadCertificate(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", &Error{Stage: StageReadCertificate, Err: err}
	}
	return string(data), nil
}

// CommonName returns the subject common name of the first certificate in certPEM
func CommonName(certPEM string) (string, error) {
	block, _ := pem.Decode([]byte(certPEM))
	if block == nil || block.Type != "CERTIFICATE" {
		return "", fmt.Errorf("failed to decode PEM certificate")
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return "", err
	}
	return cert.Subject.CommonName, nil
}

// Register registers the certificate, attaches the policy and attaches the thing.
//
// The returned certificate is non-nil as soon as the registration call succeeded, also
// when a later attachment fails.
func (r *Registrar) Register(ctx context.Context, reg Registration) (*Certificate, error) {
	ctx, rlog := logger.ContextWithLoggerDevice(ctx, reg.ThingName)
	if cn, err := CommonName(reg.CertificatePEM); err != nil {
		rlog.WithError(err).Warn("certificate could not be parsed locally")
	} else {
		rlog = rlog.WithField("cn", cn)
	}

	r.progress(StageRegisterCertificate, false, "Attempting to register certificate...")
	out, err := r.cp.RegisterCertificateWithoutCA(ctx, &iot.RegisterCertificateWithoutCAInput{
		CertificatePem: aws.String(reg.CertificatePEM),
		Status:         types.CertificateStatusActive,
	})
	if err != nil {
		return nil, &Error{Stage: StageRegisterCertificate, Err: err}
	}
	cert := &Certificate{
		ARN: aws.ToString(out.CertificateArn),
		ID:  aws.ToString(out.CertificateId),
	}
	rlog = rlog.WithField("certificateID", cert.ID)
	rlog.Info("certificate registered")
	r.progress(StageRegisterCertificate, true,
		fmt.Sprintf("Certificate registered!\n  Certificate ARN: %s\n  Certificate ID: %s", cert.ARN, cert.ID))

	r.progress(StageAttachPolicy, false, "Attaching policy to certificate...")
	_, err = r.cp.AttachPolicy(ctx, &iot.AttachPolicyInput{
		PolicyName: aws.String(reg.PolicyName),
		Target:     aws.String(cert.ARN),
	})
	if err != nil {
		return cert, &Error{Stage: StageAttachPolicy, Err: err}
	}
	rlog.WithField("policy", reg.PolicyName).Info("policy attached")
	r.progress(StageAttachPolicy, true, "Policy attached")

	r.progress(StageAttachThing, false, fmt.Sprintf("Attaching thing '%s' to certificate...", reg.ThingName))
	_, err = r.cp.AttachThingPrincipal(ctx, &iot.AttachThingPrincipalInput{
		ThingName: aws.String(reg.ThingName),
		Principal: aws.String(cert.ARN),
	})
	if err != nil {
		return cert, &Error{Stage: StageAttachThing, Err: err}
	}
	rlog.Info("thing attached")
	r.progress(StageAttachThing, true, "Thing attached")

	return cert, nil
}
