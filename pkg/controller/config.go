/*
SPDX-License-Identifier: Apache-2.0

Copyright Contributors to the Periscope project.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package controller

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type specification struct {
	Workers             int           `default:"1"`
	ShutdownGracePeriod time.Duration `default:"30s" split_words:"true"`
}

// applyEnvDefaults fills unset Config fields from CONTROLLER_* env vars,
// falling back to the struct tag defaults.
func applyEnvDefaults(config *Config) {
	spec := specification{}

	err := envconfig.Process("controller", &spec)
	if err != nil {
		logger.Errorf(err, "Error processing env vars for controller %q - using defaults", config.Name)

		spec = specification{Workers: 1, ShutdownGracePeriod: 30 * time.Second}
	}

	if config.Workers <= 0 {
		config.Workers = spec.Workers
	}

	if config.ShutdownGracePeriod <= 0 {
		config.ShutdownGracePeriod = spec.ShutdownGracePeriod
	}
}
