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

package http_test

import (
	"fmt"
	"io"
	nethttp "net/http"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/periscope-io/periscope/pkg/http"
	"github.com/periscope-io/periscope/pkg/workqueue"
)

const serverPort = 28473

var _ = Describe("StartServer", func() {
	It("should serve the work queue collectors on the metrics endpoint", func() {
		queue := workqueue.New("metrics-server-test")
		defer queue.ShutDown()

		queue.Add("ns1/pod1")

		stop := http.StartServer(http.Metrics, serverPort)
		defer stop()

		Eventually(func() (string, error) {
			resp, err := nethttp.Get(fmt.Sprintf("http://localhost:%d/metrics", serverPort))
			if err != nil {
				return "", err
			}

			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)

			return string(body), err
		}, 5*time.Second).Should(And(
			ContainSubstring("periscope_workqueue_depth"),
			ContainSubstring("periscope_workqueue_adds_total"),
		))
	})
})
