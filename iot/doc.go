// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

/*Package iot provides the cloud side of the vibration monitor on AWS IoT

It contains two packages:

  credentials	registers a device certificate with AWS IoT and attaches the
		access policy and the device's thing to it
  telemetry	turns telemetry events, forwarded from the MQTT topic
		dt/vibration/<device_id>/telemetry by an IoT rule, into
		Timestream records

The runnable programs are services/registrar, a one-shot command for operators, and
services/ingest, the Lambda function behind the IoT rule.

*/
package iot
