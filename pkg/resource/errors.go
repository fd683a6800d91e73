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

package resource

import (
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/api/meta"
)

func IsNotFoundErr(err error) bool {
	return apierrors.IsNotFound(err) || meta.IsNoMatchError(err)
}

// IsCursorExpiredErr determines if err indicates that the resource version
// cursor a watch was started from is no longer retained by the remote source,
// requiring a full relist.
func IsCursorExpiredErr(err error) bool {
	return apierrors.IsResourceExpired(err) || apierrors.IsGone(err)
}

// IsTransientErr determines if err is worth retrying with the same inputs.
// Anything that isn't a cursor expiration is treated as a transient transport
// failure - the list+watch loop has no terminal errors other than cancellation.
func IsTransientErr(err error) bool {
	return err != nil && !IsCursorExpiredErr(err)
}
