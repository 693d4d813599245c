package readiness

import (
	"context"
	"time"

	apiextensionsv1 "k8s.io/apiextensions-apiserver/pkg/apis/apiextensions/v1"
	apiextclientset "k8s.io/apiextensions-apiserver/pkg/client/clientset/clientset"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// WaitForCRDEstablished polls a CustomResourceDefinition until the apiserver
// reports it Established. Creating custom resources before that point fails
// with "no matches for kind", so the Fleet installer gates on this.
func WaitForCRDEstablished(ctx context.Context, clientset apiextclientset.Interface, name string, timeout time.Duration) error {
	return PollForReadiness(ctx, timeout, func(pollCtx context.Context) (bool, error) {
		crd, err := clientset.ApiextensionsV1().CustomResourceDefinitions().Get(pollCtx, name, metav1.GetOptions{})
		if err != nil {
			return false, nil //nolint:nilerr // returning nil to continue polling
		}

		return crdEstablished(crd), nil
	})
}

func crdEstablished(crd *apiextensionsv1.CustomResourceDefinition) bool {
	for _, condition := range crd.Status.Conditions {
		if condition.Type == apiextensionsv1.Established {
			return condition.Status == apiextensionsv1.ConditionTrue
		}
	}

	return false
}
