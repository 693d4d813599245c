package k8s

import (
	"context"
	"encoding/json"
	"fmt"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/kubernetes"
)

// LabelNode sets a label on a node via a strategic merge patch. K3s agents
// join without a role label, so the bootstrap labels workers once they are
// Ready.
func LabelNode(
	ctx context.Context,
	clientset kubernetes.Interface,
	nodeName, key, value string,
) error {
	patch := map[string]any{
		"metadata": map[string]any{
			"labels": map[string]string{key: value},
		},
	}

	patchBytes, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("marshal node label patch: %w", err)
	}

	_, err = clientset.CoreV1().Nodes().Patch(
		ctx, nodeName, types.StrategicMergePatchType, patchBytes, metav1.PatchOptions{},
	)
	if err != nil {
		return fmt.Errorf("label node %s: %w", nodeName, err)
	}

	return nil
}
