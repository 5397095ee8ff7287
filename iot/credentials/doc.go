/*Package credentials registers device certificates with AWS IoT

A device generates its key pair in a secure element and exports only its X.509
certificate. The certificate is registered without a CA, activated, bound to an
access policy and attached to the device's thing, so that the device can
authenticate against the AWS IoT MQTT broker.

The Registrar runs three remote calls in strict order:
	RegisterCertificateWithoutCA	status ACTIVE, returns certificate ARN and ID
	AttachPolicy			policy name, target is the certificate ARN
	AttachThingPrincipal		thing name, principal is the certificate ARN

A failing call stops the pipeline. Calls already made are not rolled back, so a
certificate may be registered even though Register returns an error. In that case
Register also returns the registered certificate, and the operator has to
reconcile the remaining attachments by hand.

Errors are of type *Error and carry the Stage which failed.

*/
package credentials
